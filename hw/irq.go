package hw

import (
	"github.com/go-faster/jx"

	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
	"pcecd/hw/hwio"
	"pcecd/hw/snapshot"
)

// IrqController is the system interrupt controller. Devices raise and lower
// their lines, the CPU polls Pending. Its registers are mapped at $1400.
type IrqController struct {
	DISABLE hwio.Reg8 `hwio:"offset=0x02,rwmask=0x07"`
	STATUS  hwio.Reg8 `hwio:"offset=0x03,rcb,wcb"`

	flags hwdefs.IrqLine

	// Number of SetIrqSource/ClearIrqSource calls that changed a line.
	Asserts, Deasserts int
}

func NewIrqController() *IrqController {
	c := &IrqController{}
	hwio.MustInitRegs(c)
	return c
}

// $1403: reading returns the asserted lines, writing acknowledges the timer
// interrupt.
func (c *IrqController) ReadSTATUS(_ uint8, _ bool) uint8 {
	return uint8(c.flags)
}

func (c *IrqController) WriteSTATUS(_, _ uint8) {
	c.ClearIrqSource(hwdefs.TimerIrq)
}

func (c *IrqController) SetIrqSource(line hwdefs.IrqLine) {
	if c.flags&line == line {
		return
	}
	c.flags |= line
	c.Asserts++
	log.ModEmu.DebugZ("irq assert").Stringer("line", line).End()
}

func (c *IrqController) ClearIrqSource(line hwdefs.IrqLine) {
	if c.flags&line == 0 {
		return
	}
	c.flags &^= line
	c.Deasserts++
	log.ModEmu.DebugZ("irq deassert").Stringer("line", line).End()
}

func (c *IrqController) HasIrqSource(line hwdefs.IrqLine) bool {
	return c.flags&line != 0
}

// SetMask disables the given lines. A disabled line keeps its state but is
// never pending.
func (c *IrqController) SetMask(mask hwdefs.IrqLine) {
	c.DISABLE.Write8(0x1402, uint8(mask))
}

func (c *IrqController) mask() hwdefs.IrqLine {
	return hwdefs.IrqLine(c.DISABLE.Value)
}

// Pending reports whether line is asserted and enabled.
func (c *IrqController) Pending(line hwdefs.IrqLine) bool {
	return c.flags&^c.mask()&line != 0
}

func (c *IrqController) stateFields(flags *uint8) []snapshot.Field {
	return []snapshot.Field{
		snapshot.Uint8("flags", flags),
		snapshot.Uint8("disable", &c.DISABLE.Value),
	}
}

func (c *IrqController) SaveState(e *jx.Encoder) {
	flags := uint8(c.flags)
	snapshot.EncodeObject(e, c.stateFields(&flags))
}

func (c *IrqController) LoadState(d *jx.Decoder) error {
	var flags uint8
	if err := snapshot.DecodeObject(d, c.stateFields(&flags)); err != nil {
		return err
	}
	c.flags = hwdefs.IrqLine(flags)
	return nil
}
