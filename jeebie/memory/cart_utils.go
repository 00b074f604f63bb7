package memory

import (
	"bytes"
	"strings"
	"unicode"
)

// cleanGameboyTitle renders a raw cartridge header title field as text.
// On real hardware the title is NUL-padded to its field width, so the first
// zero byte marks the end of the actual title; anything after it (including,
// on newer headers, the manufacturer code and CGB flag bytes that share the
// same 16-byte region) is padding and gets dropped rather than kept as
// spaces. Any remaining non-printable byte is rendered as '?' rather than
// silently swallowed, so a corrupt header is visible instead of invisible.
func cleanGameboyTitle(titleBytes []byte) string {
	if nul := bytes.IndexByte(titleBytes, 0); nul >= 0 {
		titleBytes = titleBytes[:nul]
	}

	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}

	return title
}
