// Package embedded registers every built-in format handler. Import it for
// its side effects.
package embedded

import (
	_ "github.com/FocuswithJustin/SongBridge/internal/formats/openlyrics"
	_ "github.com/FocuswithJustin/SongBridge/internal/formats/songshowplus"
	_ "github.com/FocuswithJustin/SongBridge/internal/formats/txt"
)
