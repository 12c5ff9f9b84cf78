package adpcm

import (
	"github.com/go-faster/jx"

	"pcecd/hw/snapshot"
)

func (a *ADPCM) stateFields() []snapshot.Field {
	return []snapshot.Field{
		snapshot.Uint8("addrLo", &a.ADDRLO.Value),
		snapshot.Uint8("addrHi", &a.ADDRHI.Value),
		snapshot.Uint8("dma", &a.DMA.Value),
		snapshot.Uint8("ctrl", &a.CTRL.Value),
		snapshot.Uint8("rate", &a.RATE.Value),
		snapshot.Array("ram", a.ram[:]),
		snapshot.Uint16("readAddr", &a.readAddr),
		snapshot.Uint16("writeAddr", &a.writeAddr),
		snapshot.Uint16("length", &a.length),
		snapshot.Uint16("playAddr", &a.playAddr),
		snapshot.Uint16("remaining", &a.remaining),
		snapshot.Uint16("half", &a.half),
		snapshot.Bool("playing", &a.playing),
		snapshot.Bool("ended", &a.ended),
	}
}

func (a *ADPCM) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, a.stateFields())
}

func (a *ADPCM) LoadState(d *jx.Decoder) error {
	return snapshot.DecodeObject(d, a.stateFields())
}
