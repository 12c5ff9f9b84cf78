package fader

import (
	"pcecd/emu/log"
	"pcecd/hw/hwio"
)

// Target is the audio source a fade applies to.
type Target uint8

const (
	TargetCdda Target = iota
	TargetAdpcm
)

func (t Target) String() string {
	if t == TargetAdpcm {
		return "adpcm"
	}
	return "cdda"
}

// Fader latches the audio fader register ($180F). Only the register is
// modeled, the volume ramp isn't.
type Fader struct {
	reg uint8
}

func New() *Fader {
	return &Fader{}
}

func (f *Fader) Write(val uint8) {
	f.reg = val
	log.ModSound.DebugZ("fader").
		Bool("enabled", f.Enabled()).
		Bool("fast", f.Fast()).
		Stringer("target", f.Target()).
		End()
}

func (f *Fader) Register() uint8 { return f.reg }

func (f *Fader) Enabled() bool { return hwio.GetBit8(f.reg, 3) }

// Fast reports whether the fast (2.5s) fade is selected, rather than the
// slow (6s) one.
func (f *Fader) Fast() bool { return hwio.GetBit8(f.reg, 2) }

func (f *Fader) Target() Target { return Target(hwio.GetBiti8(f.reg, 1)) }
