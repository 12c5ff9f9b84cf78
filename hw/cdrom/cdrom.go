// Package cdrom implements the CPU-visible register window of the CD-ROM²
// unit: register dispatch, interrupt aggregation and the glue driving the
// drive command bus.
package cdrom

import (
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
	"pcecd/hw/hwio"
	"pcecd/hw/scsi"
	"pcecd/hw/snapshot"
)

// WindowSize is the size of the address window decoded by the unit.
const WindowSize = 0x400

// SCSIBus is the drive command bus. Every signal or data port change must
// be followed by Update.
type SCSIBus interface {
	SetSignal(sig scsi.Signal, val bool)
	CheckSignal(sig scsi.Signal) bool
	Update()
	DataPort() uint8
	SetDataPort(val uint8)
	SetAckWithAutoClear()
	Status() uint8
	snapshot.Serializer
}

// InterruptController is the system interrupt controller the unit IRQ line
// is wired to.
type InterruptController interface {
	SetIrqSource(line hwdefs.IrqLine)
	ClearIrqSource(line hwdefs.IrqLine)
}

// ADPCM is the register window of the ADPCM chip, mapped at 0x08-0x0E.
type ADPCM interface {
	Read(addr uint16) uint8
	Peek(addr uint16) uint8
	Write(addr uint16, val uint8)
	snapshot.Serializer
}

// AudioSource provides the current CD-DA stereo sample.
type AudioSource interface {
	LeftSample() int16
	RightSample() int16
	snapshot.Serializer
}

// Fader is the audio fader latched through $180F.
type Fader interface {
	Write(val uint8)
	snapshot.Serializer
}

// Devices groups the collaborators of the CD-ROM unit.
type Devices struct {
	SCSI  SCSIBus
	Irq   InterruptController
	ADPCM ADPCM
	Audio AudioSource
	Fader Fader
}

var signature = [4]uint8{0x00, 0xAA, 0x55, 0x03}

// CdRom is the CD-ROM² unit as seen from the CPU, decoding $1800-$1BFF.
type CdRom struct {
	SCSICTRL  hwio.Reg8   `hwio:"offset=0x00,rcb,wcb"`
	CMD       hwio.Reg8   `hwio:"offset=0x01,rcb,wcb"`
	IRQENABLE hwio.Reg8   `hwio:"offset=0x02,rcb,wcb"`
	STATUS    hwio.Reg8   `hwio:"offset=0x03,readonly,rcb"`
	RESET     hwio.Reg8   `hwio:"offset=0x04,rcb,wcb"`
	CDDALO    hwio.Reg8   `hwio:"offset=0x05,readonly,rcb"`
	CDDAHI    hwio.Reg8   `hwio:"offset=0x06,readonly,rcb"`
	BRAM      hwio.Reg8   `hwio:"offset=0x07,rcb,wcb"`
	ADPCMDATA hwio.Reg8   `hwio:"offset=0x08,rcb,wcb"`
	ADPCMREGS hwio.Device `hwio:"offset=0x09,size=6,rcb,wcb"`
	FADER     hwio.Reg8   `hwio:"offset=0x0F,rcb,wcb"`
	SIGNATURE hwio.Device `hwio:"offset=0xC0,size=4,readonly,rcb"`

	typ hwdefs.CdRomType

	active  hwdefs.CdIrq
	enabled hwdefs.CdIrq

	bramLocked       bool
	readRightChannel bool

	scsi  SCSIBus
	irq   InterruptController
	adpcm ADPCM
	audio AudioSource
	fader Fader

	table *hwio.Table
}

// New returns a powered-on CD-ROM unit of the given type: no interrupt is
// active nor enabled and BRAM is locked.
func New(typ hwdefs.CdRomType, devs Devices) *CdRom {
	cd := &CdRom{
		typ:        typ,
		bramLocked: true,
		scsi:       devs.SCSI,
		irq:        devs.Irq,
		adpcm:      devs.ADPCM,
		audio:      devs.Audio,
		fader:      devs.Fader,
	}
	hwio.MustInitRegs(cd)
	cd.table = hwio.NewTable("cdrom")
	cd.table.MapBank(0, cd, 0)
	cd.table.Unmapped = unknownRegs{}
	return cd
}

func (cd *CdRom) Type() hwdefs.CdRomType { return cd.typ }

// Read8 reads the register at addr. Some reads have side effects.
func (cd *CdRom) Read8(addr uint16) uint8 {
	return cd.table.Read8(addr&(WindowSize-1), false)
}

// Peek8 returns the value Read8 would return, without side effects.
func (cd *CdRom) Peek8(addr uint16) uint8 {
	return cd.table.Peek8(addr & (WindowSize - 1))
}

func (cd *CdRom) Write8(addr uint16, val uint8) {
	cd.table.Write8(addr&(WindowSize-1), val)
}

// Window returns the whole register window as a device, to be mapped on
// the system bus.
func (cd *CdRom) Window() *hwio.Device {
	return &hwio.Device{
		Name: "cdrom",
		Size: WindowSize,
		ReadCb: func(addr uint16, peek bool) uint8 {
			if peek {
				return cd.Peek8(addr)
			}
			return cd.Read8(addr)
		},
		WriteCb: cd.Write8,
	}
}

// unknownRegs handles the accesses outside of the decoded registers.
type unknownRegs struct{}

func (unknownRegs) Read8(addr uint16, peek bool) uint8 {
	if !peek {
		log.ModCdRom.DebugZ("read unknown register").Hex16("addr", addr).End()
	}
	return 0xFF
}

func (unknownRegs) Write8(addr uint16, val uint8) {
	log.ModCdRom.DebugZ("write unknown register").
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}
