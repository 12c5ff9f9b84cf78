package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pcecd/emu"
	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

func runTestScript(t *testing.T, typ hwdefs.CdRomType, src string) (string, error) {
	t.Helper()
	log.Disable()

	var out strings.Builder
	s := newScript(emu.NewConsole(typ, nil), &out)
	defer s.Close()
	err := s.RunString(src)
	return out.String(), err
}

func TestScript(t *testing.T) {
	tests := []struct {
		name string
		typ  hwdefs.CdRomType
		src  string
		want string
	}{
		{
			name: "signature",
			typ:  hwdefs.CdRomSuper,
			src:  `for a = 0x18C0, 0x18C3 do printf("%02x ", read(a)) end`,
			want: "00 aa 55 03 ",
		},
		{
			name: "base unit",
			typ:  hwdefs.CdRomBase,
			src:  `printf("%02x", read(0x18C1))`,
			want: "ff",
		},
		{
			name: "flip-flop",
			typ:  hwdefs.CdRomSuper,
			src:  `printf("%02x %02x %02x", peek(0x1803), read(0x1803), read(0x1803))`,
			want: "00 00 02",
		},
		{
			name: "bram",
			typ:  hwdefs.CdRomSuper,
			src: `
write(0x1807, 0x80)
printf("%02x ", read(0x1807))
read(0x1803)
printf("%02x", read(0x1807))`,
			want: "80 00",
		},
		{
			name: "irq",
			typ:  hwdefs.CdRomSuper,
			src: `
write(0x1802, 0x10)
irq_set("subcode")
printf("%s %02x ", tostring(irq_pending()), read(0x1803))
irq_clear("subcode")
printf("%s", tostring(irq_pending()))`,
			want: "true 10 false",
		},
		{
			name: "save state",
			typ:  hwdefs.CdRomSuper,
			src: `
write(0x1807, 0x80)
local s = save_state()
read(0x1803)
load_state(s)
step(4)
printf("%02x", peek(0x1807))`,
			want: "80",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runTestScript(t, tt.typ, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"address", `read(0x10000)`, "address out of range"},
		{"value", `write(0x1807, 256)`, "value out of range"},
		{"irq", `irq_set("vblank")`, "unknown irq source"},
		{"state", `load_state("{}")`, "load state"},
		{"syntax", `read(`, "script"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runTestScript(t, hwdefs.CdRomSuper, tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got error %v, want one containing %q", err, tt.want)
			}
		})
	}
}

func TestScriptFile(t *testing.T) {
	log.Disable()
	path := filepath.Join(t.TempDir(), "regs.lua")
	if err := os.WriteFile(path, []byte(`printf("%d", read(0x18C2))`), 0644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	s := newScript(emu.NewConsole(hwdefs.CdRomSuper, nil), &out)
	defer s.Close()
	if err := s.RunFile(path); err != nil {
		t.Fatal(err)
	}
	if out.String() != "85" {
		t.Errorf("output = %q, want %q", out.String(), "85")
	}
}
