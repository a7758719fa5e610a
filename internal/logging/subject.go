package logging

import "strings"

// FormatSubject builds the component/locale/entry prefix used in console output.
func FormatSubject(component, locale, entry string) string {
	component = strings.TrimSpace(component)
	locale = strings.TrimSpace(locale)
	entry = strings.TrimSpace(entry)
	parts := make([]string, 0, 2)
	if component != "" {
		parts = append(parts, component)
	}
	switch {
	case locale != "" && entry != "":
		parts = append(parts, "["+locale+"] "+entry)
	case locale != "":
		parts = append(parts, "["+locale+"]")
	case entry != "":
		parts = append(parts, entry)
	}
	return strings.Join(parts, " · ")
}
