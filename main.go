package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"pcecd/emu"
	"pcecd/emu/log"
)

func main() {
	cli := parseArgs(os.Args[1:])

	cfg := emu.LoadConfigOrDefault(emu.ConfigPath(cli.Config))
	mask, err := cfg.Log.Mask()
	checkf(err, "invalid log configuration")
	log.EnableDebugModules(mask | log.ModuleMask(cli.Log))

	switch cli.mode {
	case runMode:
		runMain(cli.Run, cfg)
	case regsMode:
		regsMain(cli.Regs, cfg)
	case serveMode:
		serveMain(cli.Serve, cfg)
	case versionMode:
		printVersion()
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("pcecd", version)
}
