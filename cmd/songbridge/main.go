// Command songbridge converts SongShow Plus song files to OpenLyrics and
// plain text, and keeps a library of the songs it has converted.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/core/plugins"
	"github.com/FocuswithJustin/SongBridge/core/sqlite"
	"github.com/FocuswithJustin/SongBridge/internal/config"
	"github.com/FocuswithJustin/SongBridge/internal/logging"

	// Register the embedded importers and exporters.
	_ "github.com/FocuswithJustin/SongBridge/internal/embedded"
)

const version = plugins.HostVersion

// Globals are flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"Configuration file (default: $XDG_CONFIG_HOME/songbridge/config.toml)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error" placeholder:"LEVEL"`
	LogFormat string `name:"log-format" help:"Log format: auto, text, json" placeholder:"FORMAT"`
}

// load reads the configuration, applies the logging flags on top of it and
// initializes the default logger.
func (g *Globals) load() (*config.Config, error) {
	cfg, path, found, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)
	logging.Debug("configuration loaded", "path", path, "found", found)
	return cfg, nil
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Convert   ConvertCmd `cmd:"" help:"Convert SongShow Plus files"`
	Inspect   InspectCmd `cmd:"" help:"List the raw blocks of a SongShow Plus file"`
	Verify    VerifyCmd  `cmd:"" help:"Check OpenLyrics files or bundles of them"`
	Library   LibraryCmd `cmd:"" help:"Browse the song library"`
	Formats   FormatsCmd `cmd:"" help:"List registered importers and exporters"`
	ConfigCmd ConfigCmd  `cmd:"" name:"config" help:"Create or show the configuration"`
	Version   VersionCmd `cmd:"" help:"Print version information"`
}

func newParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("songbridge"),
		kong.Description("Convert SongShow Plus songs to OpenLyrics and text"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
	)
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&cli.Globals)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(ctx.Stdout, "songbridge version %s\n", version)
	fmt.Fprintf(ctx.Stdout, "sqlite driver: %s (%s)\n", info.DriverName, info.DriverType)
	return nil
}
