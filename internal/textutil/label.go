package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// NormalizeLabel turns a human-readable label into a directory-safe slug:
// whitespace runs become a single dash, letters are lowercased and
// filesystem-unsafe characters are replaced.
func NormalizeLabel(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, "-")
	return SanitizeFileName(lowerCaser.String(joined))
}
