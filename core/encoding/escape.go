// Package encoding provides text decoding and escaping utilities for song data.
package encoding

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// EscapeXML escapes special characters for XML content.
// Uses the standard library's xml.EscapeText for proper escaping.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// EscapeXMLText escapes only the basic XML entities for text content.
// This is a lighter-weight alternative to EscapeXML.
func EscapeXMLText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// EscapeLyric escapes verse text before markup is spliced into it.
// Escapes: & < > " '
// Newlines and OpenLP formatting tags ({r}, {/r}) pass through untouched.
func EscapeLyric(s string) string {
	s = EscapeXMLAttr(s)
	s = strings.ReplaceAll(s, "'", "&#x27;")
	return s
}
