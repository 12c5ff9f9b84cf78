package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/profile"

	"pcecd/emu"
	"pcecd/emu/log"
	"pcecd/emu/rpc"
	"pcecd/hw/hwdefs"
	"pcecd/hw/scsi"
)

// newConsole powers up a console, with the raw disc image at path in the
// drive, if any.
func newConsole(typ hwdefs.CdRomType, path string) (*emu.Console, error) {
	var disc scsi.Disc
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read disc: %w", err)
		}
		disc = scsi.LoadMemDisc(buf)
	}
	console := emu.NewConsole(typ, disc)
	log.AddContext(console)
	return console, nil
}

// runMain runs a Lua script against a fresh console.
func runMain(args Run, cfg emu.Config) {
	if args.CPUProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(args.CPUProfile), profile.Quiet).Stop()
	}

	console, err := newConsole(args.Type.or(cfg.CdRom.Type), args.Disc)
	checkf(err, "failed to power up")

	if args.LoadState != "" {
		buf, err := os.ReadFile(args.LoadState)
		checkf(err, "failed to read state")
		checkf(console.LoadState(buf), "failed to restore state from %s", args.LoadState)
	}

	s := newScript(console, os.Stdout)
	defer s.Close()
	checkf(s.RunFile(args.Script), "script failed")

	if args.SaveState != nil {
		defer args.SaveState.Close()
		_, err := args.SaveState.Write(console.SaveState())
		checkf(err, "failed to write state")
	}
}

// peekFunc reads a register without side effects.
type peekFunc func(addr uint16) (uint8, error)

// regsMain dumps the CD-ROM registers, of a local console or of a console
// served on args.Port.
func regsMain(args Regs, cfg emu.Config) {
	var peek peekFunc
	if args.Port != 0 {
		client, err := rpc.NewClient(args.Port)
		checkf(err, "failed to connect to console")
		defer client.Close()
		peek = client.Peek8
	} else {
		console, err := newConsole(args.Type.or(cfg.CdRom.Type), "")
		checkf(err, "failed to power up")
		peek = func(addr uint16) (uint8, error) { return console.Peek8(addr), nil }
	}
	checkf(dumpRegs(os.Stdout, peek), "failed to dump registers")
}

// Registers with a readable value. Write-only ADPCM address latches are left
// out.
var regNames = []struct {
	name string
	addr uint16
}{
	{"scsi-ctrl", 0x1800},
	{"scsi-data", 0x1801},
	{"irq-enable", 0x1802},
	{"irq-active", 0x1803},
	{"reset", 0x1804},
	{"cdda-lo", 0x1805},
	{"cdda-hi", 0x1806},
	{"bram", 0x1807},
	{"scsi-data-ack", 0x1808},
	{"adpcm-ram", 0x180A},
	{"adpcm-dma", 0x180B},
	{"adpcm-status", 0x180C},
	{"adpcm-ctrl", 0x180D},
	{"adpcm-rate", 0x180E},
	{"fader", 0x180F},
	{"signature-0", 0x18C0},
	{"signature-1", 0x18C1},
	{"signature-2", 0x18C2},
	{"signature-3", 0x18C3},
	{"irq-disable", emu.IrqBase + 2},
	{"irq-status", emu.IrqBase + 3},
}

func dumpRegs(w io.Writer, peek peekFunc) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "REGISTER\tADDR\tVALUE")
	for _, reg := range regNames {
		val, err := peek(reg.addr)
		if err != nil {
			return fmt.Errorf("peek %s: %w", reg.name, err)
		}
		fmt.Fprintf(tw, "%s\t$%04X\t$%02X\n", reg.name, reg.addr, val)
	}
	return tw.Flush()
}

// serveMain serves a console over RPC, until interrupted.
func serveMain(args Serve, cfg emu.Config) {
	console, err := newConsole(args.Type.or(cfg.CdRom.Type), args.Disc)
	checkf(err, "failed to power up")

	port := cfg.RPC.Port
	if args.Port != 0 {
		port = args.Port
	}
	server, err := rpc.NewServer(port, console)
	checkf(err, "failed to start rpc server")
	defer server.Close()

	fmt.Println("serving console on port", server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.ModEmu.InfoZ("shutting down").End()
}
