package cdrom

import (
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

// SetIrqSource raises an interrupt condition. Raising an already active
// source has no effect.
func (cd *CdRom) SetIrqSource(src hwdefs.CdIrq) {
	if cd.active&src == 0 {
		cd.active |= src
		cd.updateIrq()
	}
}

// ClearIrqSource lowers an interrupt condition.
func (cd *CdRom) ClearIrqSource(src hwdefs.CdIrq) {
	if cd.active&src != 0 {
		cd.active &^= src
		cd.updateIrq()
	}
}

// IrqState returns the active and enabled interrupt sources.
func (cd *CdRom) IrqState() (active, enabled hwdefs.CdIrq) {
	return cd.active, cd.enabled
}

func (cd *CdRom) setEnabled(enabled hwdefs.CdIrq) {
	cd.enabled = enabled & hwdefs.CdIrqWritable
	cd.updateIrq()
}

// updateIrq drives the unit interrupt line from the active and enabled
// sources.
func (cd *CdRom) updateIrq() {
	if cd.enabled&cd.active != 0 {
		log.ModCdRom.DebugZ("irq").
			Stringer("active", cd.active).
			Stringer("enabled", cd.enabled).
			End()
		cd.irq.SetIrqSource(hwdefs.Irq2)
	} else {
		cd.irq.ClearIrqSource(hwdefs.Irq2)
	}
}
