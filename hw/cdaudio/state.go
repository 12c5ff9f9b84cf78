package cdaudio

import (
	"github.com/go-faster/jx"

	"pcecd/hw/snapshot"
)

// The track itself is not part of the state, it is loaded again from the
// disc.
func (p *Player) stateFields() []snapshot.Field {
	return []snapshot.Field{
		snapshot.Int("pos", &p.pos),
		snapshot.Bool("playing", &p.playing),
		snapshot.Bool("loop", &p.loop),
		snapshot.Int16("left", &p.left),
		snapshot.Int16("right", &p.right),
	}
}

func (p *Player) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, p.stateFields())
}

func (p *Player) LoadState(d *jx.Decoder) error {
	if err := snapshot.DecodeObject(d, p.stateFields()); err != nil {
		return err
	}
	p.pos = max(p.pos, 0)
	return nil
}
