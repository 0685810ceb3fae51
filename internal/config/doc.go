// Package config loads the SongBridge TOML configuration.
//
// A missing file is not an error: Load returns the defaults. Paths are
// expanded (a leading "~" becomes the home directory) and enum values are
// lower-cased before validation. Command-line flags override what is loaded.
package config
