package emu

import (
	"sync"
	"sync/atomic"

	"pcecd/emu/log"
	"pcecd/hw"
	"pcecd/hw/adpcm"
	"pcecd/hw/cdaudio"
	"pcecd/hw/cdrom"
	"pcecd/hw/fader"
	"pcecd/hw/hwdefs"
	"pcecd/hw/hwio"
	"pcecd/hw/scsi"
	"pcecd/hw/snapshot"
)

// Addresses of the devices in the hardware page.
const (
	IrqBase   = 0x1400
	CdRomBase = 0x1800

	ioSize = 0x2000
)

// Console is the part of the system the CD-ROM unit is plugged to. All
// accesses are serialized by a single lock, so that bus accesses, stepping
// and save states can come from different goroutines.
type Console struct {
	mu sync.Mutex

	CdRom *cdrom.CdRom
	SCSI  *scsi.Bus
	ADPCM *adpcm.ADPCM
	Audio *cdaudio.Player
	Fader *fader.Fader
	Irq   *hw.IrqController

	io *hwio.Table

	accesses atomic.Uint64
}

// NewConsole powers up a console with a CD-ROM unit of the given type, and
// disc in the drive (nil for an empty drive).
func NewConsole(typ hwdefs.CdRomType, disc scsi.Disc) *Console {
	c := &Console{
		SCSI:  scsi.NewBus(disc),
		Audio: cdaudio.NewPlayer(),
		Fader: fader.New(),
		Irq:   hw.NewIrqController(),
	}
	c.ADPCM = adpcm.New(c.SCSI)
	c.CdRom = cdrom.New(typ, cdrom.Devices{
		SCSI:  c.SCSI,
		Irq:   c.Irq,
		ADPCM: c.ADPCM,
		Audio: c.Audio,
		Fader: c.Fader,
	})
	c.SCSI.PlugIrq(c.CdRom)
	c.ADPCM.PlugIrq(c.CdRom)

	c.io = hwio.NewTable("io")
	c.io.Unmapped = openBus{}
	c.io.MapBank(IrqBase, c.Irq, 0)
	c.io.MapDevice(CdRomBase, c.CdRom.Window())

	log.ModEmu.InfoZ("power up").
		Stringer("cdrom", typ).
		Bool("disc", disc != nil).
		End()
	return c
}

// Read8 reads a byte of the hardware page (addr is masked to 13 bits).
func (c *Console) Read8(addr uint16) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accesses.Add(1)
	return c.io.Read8(addr&(ioSize-1), false)
}

// Peek8 is like Read8, without side effects.
func (c *Console) Peek8(addr uint16) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.io.Peek8(addr & (ioSize - 1))
}

func (c *Console) Write8(addr uint16, val uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accesses.Add(1)
	c.io.Write8(addr&(ioSize-1), val)
}

// SetIrqSource raises a CD-ROM interrupt source, from a device the console
// doesn't emulate (sub-channel reader for example).
func (c *Console) SetIrqSource(src hwdefs.CdIrq) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CdRom.SetIrqSource(src)
}

func (c *Console) ClearIrqSource(src hwdefs.CdIrq) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CdRom.ClearIrqSource(src)
}

// IrqPending reports whether the CD-ROM interrupt is pending on the CPU.
func (c *Console) IrqPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Irq.Pending(hwdefs.Irq2)
}

// Step runs n audio steps: ADPCM DMA and playback, CD-DA streaming.
func (c *Console) Step(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for range n {
		c.ADPCM.Step()
		c.Audio.Step()
	}
}

// PlayTrack starts streaming frames (interleaved stereo samples) as CD-DA.
func (c *Console) PlayTrack(frames []int16, loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Audio.Load(frames)
	c.Audio.Play(loop)
}

// SaveState returns the state of the whole console.
func (c *Console) SaveState() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot.MarshalObject(c.stateFields()...)
}

// LoadState restores a state returned by SaveState. On error, the console
// is left as it was.
func (c *Console) LoadState(buf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := snapshot.MarshalObject(c.stateFields()...)
	err := snapshot.UnmarshalObject(buf, c.stateFields()...)
	if err == nil {
		return nil
	}
	if rerr := snapshot.UnmarshalObject(prev, c.stateFields()...); rerr != nil {
		panic("console: failed to roll back state: " + rerr.Error())
	}
	log.ModEmu.WarnZ("state rejected").Error("err", err).End()
	return err
}

// The interrupt controller comes first so that restoring the CD-ROM unit
// drives its line again.
func (c *Console) stateFields() []snapshot.Field {
	return []snapshot.Field{
		snapshot.Nested("irq", c.Irq),
		snapshot.Nested("cdrom", c.CdRom),
	}
}

// AddLogContext adds the number of bus accesses to log entries.
func (c *Console) AddLogContext(z *log.EntryZ) {
	z.Uint("access", c.accesses.Load())
}

// openBus handles the unmapped part of the hardware page.
type openBus struct{}

func (openBus) Read8(addr uint16, peek bool) uint8 {
	if !peek {
		log.ModEmu.DebugZ("read unmapped").Hex16("addr", addr).End()
	}
	return 0xFF
}

func (openBus) Write8(addr uint16, val uint8) {
	log.ModEmu.DebugZ("write unmapped").Hex16("addr", addr).Hex8("val", val).End()
}
