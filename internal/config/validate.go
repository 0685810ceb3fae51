package config

import (
	"errors"
	"slices"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	serrors "github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/internal/logging"
)

var (
	convertFormats = []string{"openlyrics", "txt"}
	compressions   = []string{"xz", "gz"}
)

// Validate ensures the configuration is usable. Every problem is reported;
// the result unwraps to one *errors.ValidationError per field.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, serrors.NewValidation("logging.level", err.Error()))
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		errs = append(errs, serrors.NewValidation("logging.format", err.Error()))
	}

	if !slices.Contains(convertFormats, c.Convert.Format) {
		errs = append(errs, serrors.NewValidation("convert.format", "must be openlyrics or txt"))
	}
	if c.Convert.Workers < 0 {
		errs = append(errs, serrors.NewValidation("convert.workers", "must not be negative"))
	}
	if _, err := encoding.NewTextDecoder(c.Convert.LegacyCodePage, c.Convert.RepairEncoding); err != nil {
		errs = append(errs, serrors.NewValidation("convert.legacy_codepage", err.Error()))
	}

	if c.Library.Enabled && c.Library.Path == "" {
		errs = append(errs, serrors.NewValidation("library.path", "required when the library is enabled"))
	}
	if c.Library.Enabled && c.Library.StoreSources && c.Library.SourcesDir == "" {
		errs = append(errs, serrors.NewValidation("library.sources_dir", "required when store_sources is set"))
	}

	if !slices.Contains(compressions, c.Bundle.Compression) {
		errs = append(errs, serrors.NewValidation("bundle.compression", "must be xz or gz"))
	}

	return errors.Join(errs...)
}
