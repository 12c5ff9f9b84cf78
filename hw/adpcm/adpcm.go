package adpcm

import (
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
	"pcecd/hw/hwio"
	"pcecd/hw/scsi"
)

const ramSize = 0x10000

// DataBus is the drive bus, seen from the ADPCM DMA engine.
type DataBus interface {
	CheckSignal(sig scsi.Signal) bool
	DataPort() uint8
	SetAckWithAutoClear()
	Update()
}

type IrqSink interface {
	SetIrqSource(src hwdefs.CdIrq)
	ClearIrqSource(src hwdefs.CdIrq)
}

type nopIrq struct{}

func (nopIrq) SetIrqSource(hwdefs.CdIrq)   {}
func (nopIrq) ClearIrqSource(hwdefs.CdIrq) {}

// ADPCM is the register window of the ADPCM chip: its 64KiB sample RAM,
// address latches, DMA from the drive and playback progress. Samples are
// not decoded.
type ADPCM struct {
	ADDRLO hwio.Reg8 `hwio:"offset=0x08,writeonly"`
	ADDRHI hwio.Reg8 `hwio:"offset=0x09,writeonly"`
	DATA   hwio.Reg8 `hwio:"offset=0x0A,rcb,wcb"`
	DMA    hwio.Reg8 `hwio:"offset=0x0B,rwmask=0x03"`
	STATUS hwio.Reg8 `hwio:"offset=0x0C,readonly,rcb"`
	CTRL   hwio.Reg8 `hwio:"offset=0x0D,wcb"`
	RATE   hwio.Reg8 `hwio:"offset=0x0E,wcb"`

	ram [ramSize]byte

	readAddr  uint16
	writeAddr uint16
	length    uint16

	playAddr  uint16
	remaining uint16
	half      uint16
	playing   bool
	ended     bool

	bus   DataBus
	irq   IrqSink
	table *hwio.Table
}

// New returns an ADPCM chip fetching DMA data from bus.
func New(bus DataBus) *ADPCM {
	a := &ADPCM{bus: bus, irq: nopIrq{}}
	hwio.MustInitRegs(a)
	a.table = hwio.NewTable("adpcm")
	a.table.MapBank(0, a, 0)
	return a
}

func (a *ADPCM) PlugIrq(irq IrqSink) {
	a.irq = irq
}

// Read reads the register at the given offset of the CD-ROM window (only
// the low 4 bits are decoded).
func (a *ADPCM) Read(addr uint16) uint8 {
	return a.table.Read8(addr&0x0F, false)
}

// Peek is like Read, without side effects.
func (a *ADPCM) Peek(addr uint16) uint8 {
	return a.table.Peek8(addr & 0x0F)
}

func (a *ADPCM) Write(addr uint16, val uint8) {
	a.table.Write8(addr&0x0F, val)
}

func (a *ADPCM) latch() uint16 {
	return uint16(a.ADDRHI.Value)<<8 | uint16(a.ADDRLO.Value)
}

func (a *ADPCM) ReadDATA(_ uint8, peek bool) uint8 {
	val := a.ram[a.readAddr]
	if !peek {
		a.readAddr++
	}
	return val
}

func (a *ADPCM) WriteDATA(_, val uint8) {
	a.ram[a.writeAddr] = val
	a.writeAddr++
}

func (a *ADPCM) ReadSTATUS(_ uint8, _ bool) uint8 {
	return hwio.Bool8(a.ended, 0) | hwio.Bool8(a.playing, 3)
}

func (a *ADPCM) WriteCTRL(old, val uint8) {
	rising := func(n uint) bool { return !hwio.GetBit8(old, n) && hwio.GetBit8(val, n) }

	if hwio.GetBit8(val, 7) {
		a.reset()
		return
	}
	if rising(1) {
		a.writeAddr = a.latch()
	}
	if rising(3) {
		a.readAddr = a.latch()
	}
	if rising(4) {
		a.length = a.latch()
	}
	switch {
	case rising(6):
		a.play()
	case !hwio.GetBit8(val, 6) && a.playing:
		log.ModAdpcm.DebugZ("stop").Hex16("addr", a.playAddr).End()
		a.playing = false
	}
}

func (a *ADPCM) WriteRATE(_, val uint8) {
	log.ModAdpcm.DebugZ("sample rate").Uint("hz", uint64(a.SampleRate())).End()
}

// SampleRate returns the playback rate selected by the RATE register.
func (a *ADPCM) SampleRate() int {
	return 32000 / (16 - int(a.RATE.Value&0x0F))
}

func (a *ADPCM) reset() {
	log.ModAdpcm.DebugZ("reset").End()
	a.readAddr = 0
	a.writeAddr = 0
	a.length = 0
	a.playing = false
	a.ended = false
	a.irq.ClearIrqSource(hwdefs.CdIrqAdpcmHalf | hwdefs.CdIrqAdpcmStop)
}

func (a *ADPCM) play() {
	a.playAddr = a.readAddr
	a.remaining = a.length
	a.half = a.length / 2
	a.playing = true
	a.ended = false
	a.irq.ClearIrqSource(hwdefs.CdIrqAdpcmHalf | hwdefs.CdIrqAdpcmStop)

	log.ModAdpcm.DebugZ("play").
		Hex16("addr", a.playAddr).
		Hex16("len", a.length).
		End()
}

// Step runs one DMA transfer and consumes one byte of playback.
func (a *ADPCM) Step() {
	a.stepDMA()
	a.stepPlayback()
}

func (a *ADPCM) dataIn() bool {
	return a.bus.CheckSignal(scsi.Req) && a.bus.CheckSignal(scsi.Io) && !a.bus.CheckSignal(scsi.Cd)
}

func (a *ADPCM) stepDMA() {
	if a.DMA.Value&0x03 == 0 || !a.dataIn() {
		return
	}

	a.ram[a.writeAddr] = a.bus.DataPort()
	a.writeAddr++
	a.bus.SetAckWithAutoClear()
	a.bus.Update()

	if !a.dataIn() {
		log.ModAdpcm.DebugZ("dma done").Hex16("addr", a.writeAddr).End()
		a.DMA.Value &^= 0x03
	}
}

func (a *ADPCM) stepPlayback() {
	if !a.playing {
		return
	}
	if a.remaining == 0 {
		a.stop()
		return
	}

	a.playAddr++
	a.remaining--
	switch a.remaining {
	case 0:
		a.stop()
	case a.half:
		a.irq.SetIrqSource(hwdefs.CdIrqAdpcmHalf)
	}
}

func (a *ADPCM) stop() {
	a.playing = false
	a.ended = true
	hwio.ClearBit8(&a.CTRL.Value, 6)
	a.irq.ClearIrqSource(hwdefs.CdIrqAdpcmHalf)
	a.irq.SetIrqSource(hwdefs.CdIrqAdpcmStop)
}
