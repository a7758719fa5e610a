package textutil

import "strings"

// SanitizeFileName makes name safe to use as a single path element. Path
// separators, colons and asterisks become dashes; quotes, question marks and
// redirection characters are dropped.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(strings.Map(fileNameRune, strings.TrimSpace(name)))
}

func fileNameRune(r rune) rune {
	switch r {
	case '/', '\\', ':', '*':
		return '-'
	case '?', '"', '<', '>', '|', 0:
		return -1
	default:
		return r
	}
}
