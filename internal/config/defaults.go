package config

import "github.com/FocuswithJustin/SongBridge/core/encoding"

const (
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
	defaultConvertFormat   = "openlyrics"
	defaultOutputDir       = "."
	defaultApplicationName = "SongBridge"
	defaultLibraryPath     = "~/.local/share/songbridge/library.db"
	defaultSourcesDir      = "~/.local/share/songbridge/sources"
	defaultCompression     = "xz"
)

// Default returns a Config populated with the built-in defaults. Workers of
// zero means one worker per CPU.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Convert: Convert{
			Format:          defaultConvertFormat,
			OutputDir:       defaultOutputDir,
			RepairEncoding:  true,
			LegacyCodePage:  encoding.DefaultLegacyCodePage,
			ApplicationName: defaultApplicationName,
			PrettyXML:       true,
		},
		Library: Library{
			Path:         defaultLibraryPath,
			StoreSources: true,
			SourcesDir:   defaultSourcesDir,
		},
		Bundle: Bundle{
			Compression: defaultCompression,
		},
	}
}
