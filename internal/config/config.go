package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	serrors "github.com/FocuswithJustin/SongBridge/core/errors"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Convert contains the defaults of the convert command.
type Convert struct {
	Format          string `toml:"format"`
	OutputDir       string `toml:"output_dir"`
	Workers         int    `toml:"workers"`
	RepairEncoding  bool   `toml:"repair_encoding"`
	LegacyCodePage  string `toml:"legacy_codepage"`
	Overwrite       bool   `toml:"overwrite"`
	ApplicationName string `toml:"application_name"`
	PrettyXML       bool   `toml:"pretty_xml"`
}

// Library contains configuration for the song library database.
type Library struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	StoreSources bool   `toml:"store_sources"`
	SourcesDir   string `toml:"sources_dir"`
}

// Bundle contains configuration for output bundles.
type Bundle struct {
	Compression string `toml:"compression"`
}

// Config is the top-level configuration.
type Config struct {
	Logging Logging `toml:"logging"`
	Convert Convert `toml:"convert"`
	Library Library `toml:"library"`
	Bundle  Bundle  `toml:"bundle"`
}

// Load locates, parses, normalizes and validates a configuration file. An
// empty path means DefaultConfigPath. It also returns the resolved path and
// whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, serrors.NewParse("TOML", resolvedPath, err.Error())
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/songbridge/config.toml, or
// ~/.config/songbridge/config.toml when XDG_CONFIG_HOME is unset.
func DefaultConfigPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "songbridge", "config.toml"), nil
	}
	return expandPath("~/.config/songbridge/config.toml")
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path, creating its
// directory. An existing file is left alone unless overwrite is set.
func CreateSample(path string, overwrite bool) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
