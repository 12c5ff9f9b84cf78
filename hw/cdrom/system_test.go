package cdrom

import (
	"bytes"
	"strings"
	"testing"

	"pcecd/hw/adpcm"
	"pcecd/hw/cdaudio"
	"pcecd/hw/fader"
	"pcecd/hw/hwdefs"
	"pcecd/hw/scsi"
	"pcecd/hw/snapshot"
)

type system struct {
	*CdRom
	bus   *scsi.Bus
	adpcm *adpcm.ADPCM
	audio *cdaudio.Player
	irq   *fakeIrq
}

func newSystem(t *testing.T, disc scsi.Disc) *system {
	t.Helper()
	s := &system{
		bus:   scsi.NewBus(disc),
		audio: cdaudio.NewPlayer(),
		irq:   &fakeIrq{},
	}
	s.adpcm = adpcm.New(s.bus)
	s.CdRom = New(hwdefs.CdRomSuper, Devices{
		SCSI:  s.bus,
		Irq:   s.irq,
		ADPCM: s.adpcm,
		Audio: s.audio,
		Fader: fader.New(),
	})
	s.bus.PlugIrq(s.CdRom)
	s.adpcm.PlugIrq(s.CdRom)
	return s
}

// command sends a command through the CPU registers.
func (s *system) command(enabled uint8, cmd ...byte) {
	s.Write8(0x00, 0)
	for _, c := range cmd {
		s.Write8(0x01, c)
		s.Write8(0x02, 0x80|enabled)
		s.Write8(0x02, enabled)
	}
}

// ack acknowledges a status or message byte.
func (s *system) ack(enabled uint8) uint8 {
	val := s.Read8(0x01)
	s.Write8(0x02, 0x80|enabled)
	s.Write8(0x02, enabled)
	return val
}

func TestReadSectorThroughRegisters(t *testing.T) {
	disc := scsi.NewMemDisc(2)
	sector := bytes.Repeat([]byte("PC Engine CD-ROM"), scsi.SectorSize/16)
	if err := disc.WriteSector(1, sector); err != nil {
		t.Fatal(err)
	}
	s := newSystem(t, disc)

	const enabled = uint8(hwdefs.CdIrqDataIn | hwdefs.CdIrqStatusMsgIn)
	s.command(enabled, 0x08, 0x00, 0x00, 0x01, 0x01, 0x00)

	if !s.irq.line {
		t.Fatalf("irq line not asserted on data ready")
	}
	if got := s.Read8(0x03) &^ 0x02; got != uint8(hwdefs.CdIrqDataIn) {
		t.Fatalf("active irqs = %02x, want %02x", got, hwdefs.CdIrqDataIn)
	}

	var got []byte
	for s.Read8(0x00) == 0xC8 {
		got = append(got, s.Read8(0x08))
	}
	if !bytes.Equal(got, sector) {
		t.Fatalf("read %d bytes, mismatch with sector", len(got))
	}

	if got := s.Read8(0x03) &^ 0x02; got != uint8(hwdefs.CdIrqStatusMsgIn) {
		t.Errorf("active irqs = %02x, want %02x", got, hwdefs.CdIrqStatusMsgIn)
	}
	if status := s.ack(enabled); status != scsi.StatusGood {
		t.Errorf("status = %02x", status)
	}
	s.ack(enabled)
	if got := s.Read8(0x00); got != 0 {
		t.Errorf("drive still busy: %02x", got)
	}

	s.Write8(0x04, 0x02)
	if s.irq.line {
		t.Errorf("irq line asserted after reset")
	}
	s.Write8(0x04, 0x00)
}

func TestAdpcmIrq(t *testing.T) {
	s := newSystem(t, nil)
	s.Write8(0x02, uint8(hwdefs.CdIrqAdpcmStop))

	s.Write8(0x08, 0x02)
	s.Write8(0x09, 0x00)
	s.Write8(0x0D, 0x10)
	s.Write8(0x0D, 0x50)
	s.adpcm.Step()
	if s.irq.line {
		t.Fatalf("irq asserted before end of playback")
	}
	s.adpcm.Step()
	if !s.irq.line {
		t.Fatalf("irq not asserted at end of playback")
	}
	if got := s.Read8(0x0C); got != 0x01 {
		t.Errorf("adpcm status = %02x, want 01", got)
	}
}

func TestSaveLoadState(t *testing.T) {
	disc := scsi.NewMemDisc(4)
	s := newSystem(t, disc)

	const enabled = uint8(hwdefs.CdIrqDataIn)
	s.command(enabled, 0x08, 0x00, 0x00, 0x00, 0x02, 0x00)
	for range 100 {
		s.Read8(0x08)
	}
	s.Write8(0x07, 0x80)
	s.Read8(0x03)
	s.Write8(0x07, 0x80)

	buf := snapshot.Marshal("cdrom", s)

	s2 := newSystem(t, disc)
	if err := snapshot.Unmarshal(buf, "cdrom", s2); err != nil {
		t.Fatal(err)
	}

	if !s2.irq.line {
		t.Errorf("irq line not recomputed on load")
	}
	a1, e1 := s.IrqState()
	a2, e2 := s2.IrqState()
	if a1 != a2 || e1 != e2 {
		t.Errorf("irq state = %s/%s, want %s/%s", a2, e2, a1, e1)
	}
	for _, addr := range []uint16{0x00, 0x01, 0x02, 0x03, 0x04, 0x07} {
		if got, want := s2.Peek8(addr), s.Peek8(addr); got != want {
			t.Errorf("peek %02x = %02x, want %02x", addr, got, want)
		}
	}
	for i := range 2*scsi.SectorSize - 100 {
		if got, want := s2.Read8(0x08), s.Read8(0x08); got != want {
			t.Fatalf("byte %d: got %02x, want %02x", i, got, want)
		}
	}

	t.Run("enabled mask", func(t *testing.T) {
		bad := strings.Replace(string(buf), `"enabledIrqs":64`, `"enabledIrqs":255`, 1)
		if bad == string(buf) {
			t.Fatalf("enabledIrqs not found in %.80s", buf)
		}
		s3 := newSystem(t, disc)
		if err := snapshot.Unmarshal([]byte(bad), "cdrom", s3); err != nil {
			t.Fatal(err)
		}
		if _, enabled := s3.IrqState(); enabled != hwdefs.CdIrqWritable {
			t.Errorf("enabled = %s, want %s", enabled, hwdefs.CdIrqWritable)
		}
	})

	t.Run("missing device", func(t *testing.T) {
		bad := strings.Replace(string(buf), `"fader":`, `"fadr":`, 1)
		if err := snapshot.Unmarshal([]byte(bad), "cdrom", newSystem(t, disc)); err == nil {
			t.Errorf("Unmarshal should fail")
		}
	})
}
