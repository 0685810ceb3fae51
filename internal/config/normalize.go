package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Convert.Format = strings.ToLower(strings.TrimSpace(c.Convert.Format))
	if c.Convert.Format == "" {
		c.Convert.Format = defaultConvertFormat
	}
	c.Convert.LegacyCodePage = strings.TrimSpace(c.Convert.LegacyCodePage)
	c.Convert.ApplicationName = strings.TrimSpace(c.Convert.ApplicationName)
	if c.Convert.ApplicationName == "" {
		c.Convert.ApplicationName = defaultApplicationName
	}

	c.Bundle.Compression = strings.ToLower(strings.TrimSpace(c.Bundle.Compression))
	if c.Bundle.Compression == "" {
		c.Bundle.Compression = defaultCompression
	}

	return c.normalizePaths()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Convert.OutputDir) == "" {
		c.Convert.OutputDir = defaultOutputDir
	}
	if c.Convert.OutputDir, err = expandPath(strings.TrimSpace(c.Convert.OutputDir)); err != nil {
		return fmt.Errorf("convert.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Library.Path) == "" {
		c.Library.Path = defaultLibraryPath
	}
	if c.Library.Path, err = expandPath(strings.TrimSpace(c.Library.Path)); err != nil {
		return fmt.Errorf("library.path: %w", err)
	}
	if strings.TrimSpace(c.Library.SourcesDir) == "" {
		c.Library.SourcesDir = defaultSourcesDir
	}
	if c.Library.SourcesDir, err = expandPath(strings.TrimSpace(c.Library.SourcesDir)); err != nil {
		return fmt.Errorf("library.sources_dir: %w", err)
	}
	return nil
}
