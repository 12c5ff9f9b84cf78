package scsi

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"pcecd/hw/snapshot"
)

func (b *Bus) stateFields(phase *uint8, sigs *uint16) []snapshot.Field {
	return []snapshot.Field{
		snapshot.Uint16("signals", sigs),
		snapshot.Uint8("phase", phase),
		snapshot.Uint8("dataPort", &b.dataPort),
		snapshot.Bool("autoClearAck", &b.autoClearAck),
		snapshot.Array("cmd", b.cmd[:]),
		snapshot.Int("cmdLen", &b.cmdLen),
		snapshot.Uint8("status", &b.status),
		snapshot.Uint8("sense", &b.sense),
		snapshot.Bytes("buf", &b.buf),
		snapshot.Int("pos", &b.pos),
		snapshot.Uint32("lba", &b.lba),
		snapshot.Int("remaining", &b.remaining),
	}
}

func (b *Bus) SaveState(e *jx.Encoder) {
	phase, sigs := uint8(b.phase), uint16(b.signals)
	snapshot.EncodeObject(e, b.stateFields(&phase, &sigs))
}

func (b *Bus) LoadState(d *jx.Decoder) error {
	var (
		phase uint8
		sigs  uint16
	)
	if err := snapshot.DecodeObject(d, b.stateFields(&phase, &sigs)); err != nil {
		return err
	}
	if b.disc == nil && b.remaining > 0 {
		return errors.Errorf("sector transfer in progress (%d sectors left) and no disc", b.remaining)
	}
	b.phase = Phase(phase)
	b.signals = signals(sigs)
	if b.cmdLen < 0 || b.cmdLen > len(b.cmd) {
		b.cmdLen = 0
	}
	return nil
}
