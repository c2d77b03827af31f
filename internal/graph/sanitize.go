package graph

import "strings"

// sanitizeText truncates s to maxLen characters and strips quote
// characters, backslashes, and ASCII control bytes. Both store backends
// bind values instead of interpolating them into query text, so this is
// a defense-in-depth length/format guard for every free-text field
// (preview, memory type, reason, resolution). Hashes and timestamps are
// system-generated and bypass it.
func sanitizeText(s string, maxLen int) string {
	if s == "" {
		return ""
	}
	if runes := []rune(s); maxLen > 0 && len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '"', '`', '\\':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}
