package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/internal/config"
)

// ConfigCmd groups the configuration commands.
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a commented sample configuration"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
}

// ConfigInitCmd writes the sample configuration.
type ConfigInitCmd struct {
	Path      string `help:"Where to write the file (default: the standard config path)" type:"path"`
	Overwrite bool   `help:"Replace an existing file"`
}

func (c *ConfigInitCmd) Run(kctx *kong.Context, g *Globals) error {
	path := c.Path
	if path == "" {
		path = g.Config
	}
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	if err := config.CreateSample(path, c.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(kctx.Stdout, "wrote %s\n", path)
	return nil
}

// ConfigShowCmd prints the configuration after defaults are applied.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(kctx *kong.Context, g *Globals) error {
	cfg, path, exists, err := config.Load(g.Config)
	if err != nil {
		return err
	}
	if exists {
		fmt.Fprintf(kctx.Stdout, "# loaded from %s\n", path)
	} else {
		fmt.Fprintf(kctx.Stdout, "# %s not found, showing defaults\n", path)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = kctx.Stdout.Write(data)
	return err
}
