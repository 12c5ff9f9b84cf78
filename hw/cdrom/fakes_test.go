package cdrom

import (
	"fmt"

	"github.com/go-faster/jx"

	"pcecd/hw/hwdefs"
	"pcecd/hw/scsi"
	"pcecd/hw/snapshot"
)

// fakeBus records the calls made by the unit on the drive bus.
type fakeBus struct {
	sigs   map[scsi.Signal]bool
	data   uint8
	status uint8
	calls  []string
}

func newFakeBus() *fakeBus {
	return &fakeBus{sigs: make(map[scsi.Signal]bool)}
}

func (b *fakeBus) SetSignal(sig scsi.Signal, val bool) {
	b.sigs[sig] = val
	b.calls = append(b.calls, fmt.Sprintf("set %s=%t", sig, val))
}

func (b *fakeBus) CheckSignal(sig scsi.Signal) bool { return b.sigs[sig] }
func (b *fakeBus) Update()                          { b.calls = append(b.calls, "update") }
func (b *fakeBus) DataPort() uint8                  { return b.data }
func (b *fakeBus) Status() uint8                    { return b.status }

func (b *fakeBus) SetDataPort(val uint8) {
	b.data = val
	b.calls = append(b.calls, fmt.Sprintf("data=%02x", val))
}

func (b *fakeBus) SetAckWithAutoClear() {
	b.calls = append(b.calls, "auto-ack")
}

func (b *fakeBus) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, []snapshot.Field{snapshot.Uint8("data", &b.data)})
}

func (b *fakeBus) LoadState(d *jx.Decoder) error {
	return snapshot.DecodeObject(d, []snapshot.Field{snapshot.Uint8("data", &b.data)})
}

type fakeIrq struct {
	line         bool
	sets, clears int
	unknownLines []hwdefs.IrqLine
}

func (f *fakeIrq) SetIrqSource(line hwdefs.IrqLine) {
	if line != hwdefs.Irq2 {
		f.unknownLines = append(f.unknownLines, line)
	}
	f.line = true
	f.sets++
}

func (f *fakeIrq) ClearIrqSource(line hwdefs.IrqLine) {
	if line != hwdefs.Irq2 {
		f.unknownLines = append(f.unknownLines, line)
	}
	f.line = false
	f.clears++
}

func (f *fakeIrq) resetCounts() { f.sets, f.clears = 0, 0 }

type fakeADPCM struct {
	regs  [16]uint8
	calls []string
}

func (a *fakeADPCM) Read(addr uint16) uint8 {
	a.calls = append(a.calls, fmt.Sprintf("read %03x", addr))
	return a.regs[addr&0x0F]
}

func (a *fakeADPCM) Peek(addr uint16) uint8 {
	return a.regs[addr&0x0F]
}

func (a *fakeADPCM) Write(addr uint16, val uint8) {
	a.calls = append(a.calls, fmt.Sprintf("write %03x=%02x", addr, val))
}

func (a *fakeADPCM) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, []snapshot.Field{snapshot.Array("regs", a.regs[:])})
}

func (a *fakeADPCM) LoadState(d *jx.Decoder) error {
	return snapshot.DecodeObject(d, []snapshot.Field{snapshot.Array("regs", a.regs[:])})
}

type fakeAudio struct {
	left, right int16
}

func (a *fakeAudio) LeftSample() int16  { return a.left }
func (a *fakeAudio) RightSample() int16 { return a.right }

func (a *fakeAudio) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, []snapshot.Field{
		snapshot.Int16("left", &a.left),
		snapshot.Int16("right", &a.right),
	})
}

func (a *fakeAudio) LoadState(d *jx.Decoder) error {
	return snapshot.DecodeObject(d, []snapshot.Field{
		snapshot.Int16("left", &a.left),
		snapshot.Int16("right", &a.right),
	})
}

type fakeFader struct {
	writes []uint8
}

func (f *fakeFader) Write(val uint8) { f.writes = append(f.writes, val) }

func (f *fakeFader) SaveState(e *jx.Encoder) {
	snapshot.EncodeObject(e, nil)
}

func (f *fakeFader) LoadState(d *jx.Decoder) error {
	return snapshot.DecodeObject(d, nil)
}

type testUnit struct {
	*CdRom
	bus   *fakeBus
	irq   *fakeIrq
	adpcm *fakeADPCM
	audio *fakeAudio
	fader *fakeFader
}

func newTestUnit(typ hwdefs.CdRomType) *testUnit {
	u := &testUnit{
		bus:   newFakeBus(),
		irq:   &fakeIrq{},
		adpcm: &fakeADPCM{},
		audio: &fakeAudio{},
		fader: &fakeFader{},
	}
	u.CdRom = New(typ, Devices{
		SCSI:  u.bus,
		Irq:   u.irq,
		ADPCM: u.adpcm,
		Audio: u.audio,
		Fader: u.fader,
	})
	return u
}
