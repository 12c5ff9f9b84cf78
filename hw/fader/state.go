package fader

import (
	"github.com/go-faster/jx"

	"pcecd/hw/snapshot"
)

func (f *Fader) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, []snapshot.Field{snapshot.Uint8("reg", &f.reg)})
}

func (f *Fader) LoadState(d *jx.Decoder) error {
	return snapshot.DecodeObject(d, []snapshot.Field{snapshot.Uint8("reg", &f.reg)})
}
