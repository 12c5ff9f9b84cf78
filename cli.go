package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"pcecd/emu/log"
	"pcecd/hw/hwdefs"
)

type mode byte

const (
	runMode     mode = iota // Run a Lua script against the console
	regsMode                // Dump CD-ROM registers
	serveMode               // Serve the console over RPC
	versionMode             // Show pcecd version
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run a Lua script against the CD-ROM unit."`
		Regs    Regs    `cmd:"" help:"Dump CD-ROM registers."`
		Serve   Serve   `cmd:"" help:"Serve the console over RPC."`
		Version Version `cmd:"" help:"Show pcecd version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"Configuration file." type:"path" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		Script string `arg:"" name:"/path/to/script.lua" help:"Lua script to run." type:"existingfile"`

		Type       cdromType `name:"type" help:"${type_help}" placeholder:"base|super|arcade"`
		Disc       string    `name:"disc" help:"${disc_help}" type:"existingfile" placeholder:"FILE"`
		LoadState  string    `name:"load-state" help:"Restore console state before running the script." type:"existingfile" placeholder:"FILE"`
		SaveState  *outfile  `name:"save-state" help:"Write console state after the script ran." placeholder:"FILE|stdout|stderr"`
		CPUProfile string    `name:"cpuprofile" help:"${cpuprofile_help}" type:"path" placeholder:"DIR"`
	}

	Regs struct {
		Type cdromType `name:"type" help:"${type_help}" placeholder:"base|super|arcade"`
		Port int       `name:"port" help:"Dump the registers of a console served on this port."`
	}

	Serve struct {
		Type cdromType `name:"type" help:"${type_help}" placeholder:"base|super|arcade"`
		Disc string    `name:"disc" help:"${disc_help}" type:"existingfile" placeholder:"FILE"`
		Port int       `name:"port" help:"Port to listen on. (default from config)"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"type_help":       "CD-ROM unit type. (default from config)",
	"disc_help":       "Raw disc image (2048-byte sectors), leave the drive empty if not set.",
	"cpuprofile_help": "Write CPU profile in directory.",
	"log_help":        "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("pcecd"),
		kong.Description("PC Engine CD-ROM² register and interrupt bridge."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "regs":
		cfg.mode = regsMode
	case "serve":
		cfg.mode = serveMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if ctx.Command() == "" || strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	var token string
	if err := ctx.Scan.PopValueInto("log", &token); err != nil {
		return err
	}
	mask, err := parseLogModules(token)
	if err != nil {
		return err
	}
	*lm = logModMask(mask)
	return nil
}

// parseLogModules parses a comma-separated list of log modules. "no" returns
// an empty mask and disables logging.
func parseLogModules(list string) (log.ModuleMask, error) {
	nolog := false
	allLogs := false

	var mask log.ModuleMask
	for _, v := range strings.Split(list, ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return 0, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, nil
}

// cdromType is an optional CD-ROM unit type, empty if not set.
type cdromType string

// Implements kong.MapperValue interface.
func (ct *cdromType) Decode(ctx *kong.DecodeContext) error {
	var token string
	if err := ctx.Scan.PopValueInto("type", &token); err != nil {
		return err
	}
	var typ hwdefs.CdRomType
	if err := typ.UnmarshalText([]byte(token)); err != nil {
		return err
	}
	*ct = cdromType(token)
	return nil
}

// or returns the decoded type, or def if the flag wasn't set.
func (ct cdromType) or(def hwdefs.CdRomType) hwdefs.CdRomType {
	var typ hwdefs.CdRomType
	if ct == "" || typ.UnmarshalText([]byte(ct)) != nil {
		return def
	}
	return typ
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
