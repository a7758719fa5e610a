package manifest

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

var urlPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

// Inspection is what Inspect learned from a merged manifest.
type Inspection struct {
	Families        []string
	Sources         []string
	DanglingSources []string
}

// Inspect parses merged CSS and resolves every relative src url against
// localeDir. The error is non-nil only when the text cannot be parsed.
func Inspect(text, localeDir string) (Inspection, error) {
	var out Inspection
	if strings.TrimSpace(text) == "" {
		return out, nil
	}
	sheet, err := parser.Parse(text)
	if err != nil {
		return out, err
	}

	families := make(map[string]struct{})
	sources := make(map[string]struct{})
	var walk func(rules []*css.Rule)
	walk = func(rules []*css.Rule) {
		for _, rule := range rules {
			if rule.Kind == css.AtRule && strings.TrimPrefix(rule.Name, "@") == "font-face" {
				for _, decl := range rule.Declarations {
					switch strings.ToLower(decl.Property) {
					case "font-family":
						family := strings.Trim(strings.TrimSpace(decl.Value), `"'`)
						if _, ok := families[family]; !ok && family != "" {
							families[family] = struct{}{}
							out.Families = append(out.Families, family)
						}
					case "src":
						for _, m := range urlPattern.FindAllStringSubmatch(decl.Value, -1) {
							target := strings.TrimSpace(m[1])
							if _, ok := sources[target]; ok {
								continue
							}
							sources[target] = struct{}{}
							out.Sources = append(out.Sources, target)
							if dangling(target, localeDir) {
								out.DanglingSources = append(out.DanglingSources, target)
							}
						}
					}
				}
			}
			if len(rule.Rules) > 0 {
				walk(rule.Rules)
			}
		}
	}
	walk(sheet.Rules)
	return out, nil
}

func dangling(target, localeDir string) bool {
	parsed, err := url.Parse(target)
	if err != nil {
		return true
	}
	if parsed.Scheme != "" || parsed.Host != "" || strings.HasPrefix(parsed.Path, "/") {
		return false
	}
	rel := path.Clean(parsed.Path)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return false
	}
	_, err = os.Stat(filepath.Join(localeDir, filepath.FromSlash(rel)))
	return err != nil
}
