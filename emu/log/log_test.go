package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

type counterContext struct{ n int }

func (c *counterContext) AddLogContext(z *EntryZ) { z.Int("n", c.n) }

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })
	return &buf
}

func TestDisabledModuleReturnsNilEntry(t *testing.T) {
	DisableDebugModules(ModuleMaskAll)

	if z := ModCdRom.DebugZ("hidden"); z != nil {
		t.Fatalf("DebugZ on disabled module = %v, want nil", z)
	}

	// Chaining on a nil entry must be a no-op.
	ModCdRom.DebugZ("hidden").Hex16("addr", 0x1234).Bool("b", true).End()
}

func TestEntryZFields(t *testing.T) {
	buf := captureOutput(t)

	EnableDebugModules(ModScsi.Mask())
	defer DisableDebugModules(ModScsi.Mask())

	ModScsi.DebugZ("phase change").
		Hex8("val", 0x0a).
		Hex16("addr", 0x1803).
		String("phase", "datain").
		Error("err", errors.New("boom")).
		End()

	out := buf.String()
	for _, want := range []string{"phase change", "val=0a", "addr=1803", "phase=datain", "err=boom", "_mod=scsi"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

func TestWarnAlwaysEnabled(t *testing.T) {
	DisableDebugModules(ModuleMaskAll)
	if !ModAdpcm.Enabled(WarnLevel) {
		t.Errorf("warn level should always be enabled")
	}
	if ModAdpcm.Enabled(DebugLevel) {
		t.Errorf("debug level should be disabled")
	}
}

func TestModuleByName(t *testing.T) {
	mod, ok := ModuleByName("cdrom")
	if !ok || mod != ModCdRom {
		t.Fatalf("ModuleByName(cdrom) = %v, %t", mod, ok)
	}
	if _, ok := ModuleByName("nope"); ok {
		t.Fatalf("ModuleByName(nope) should fail")
	}
}

func TestContext(t *testing.T) {
	buf := captureOutput(t)

	ctx := &counterContext{n: 42}
	AddContext(ctx)
	defer func() { contexts = contexts[:len(contexts)-1] }()

	ModEmu.WarnZ("with context").End()
	if !strings.Contains(buf.String(), "n=42") {
		t.Errorf("log output %q doesn't contain context field", buf.String())
	}
}
