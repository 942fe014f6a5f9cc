// Package encoding normalizes text found in model interchange files.
package encoding

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Name converts a display name read from a model file to NFC UTF-8.
// Names that are not valid UTF-8 are assumed to be Windows-1252, which
// is what most legacy exporters on Windows write.
func Name(s string) string {
	if !utf8.ValidString(s) {
		decoded, err := charmap.Windows1252.NewDecoder().String(s)
		if err != nil {
			return s
		}
		s = decoded
	}
	return norm.NFC.String(s)
}
