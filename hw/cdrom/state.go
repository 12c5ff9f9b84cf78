package cdrom

import (
	"github.com/go-faster/jx"

	"pcecd/hw/hwdefs"
	"pcecd/hw/snapshot"
)

func (cd *CdRom) stateFields(active, enabled *uint8) []snapshot.Field {
	return []snapshot.Field{
		snapshot.Uint8("activeIrqs", active),
		snapshot.Bool("bramLocked", &cd.bramLocked),
		snapshot.Uint8("enabledIrqs", enabled),
		snapshot.Bool("readRightChannel", &cd.readRightChannel),

		snapshot.Nested("scsi", cd.scsi),
		snapshot.Nested("adpcm", cd.adpcm),
		snapshot.Nested("audio", cd.audio),
		snapshot.Nested("fader", cd.fader),
	}
}

// SaveState writes the unit state, followed by the state of its devices.
func (cd *CdRom) SaveState(e *jx.Encoder) {
	active, enabled := uint8(cd.active), uint8(cd.enabled)
	snapshot.EncodeObject(e, cd.stateFields(&active, &enabled))
}

func (cd *CdRom) LoadState(d *jx.Decoder) error {
	var active, enabled uint8
	if err := snapshot.DecodeObject(d, cd.stateFields(&active, &enabled)); err != nil {
		return err
	}
	cd.active = hwdefs.CdIrq(active)
	cd.setEnabled(hwdefs.CdIrq(enabled))
	return nil
}
