package catalogue

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"webfonts/internal/services"
	"webfonts/internal/workspace"
)

//go:embed catalogue.toml
var builtin []byte

// Style holds the CSS descriptors forwarded to the subsetter.
type Style struct {
	Family      string `toml:"family" json:"family"`
	Weight      string `toml:"weight,omitempty" json:"weight,omitempty"`
	WeightRange string `toml:"weight_range,omitempty" json:"weight_range,omitempty"`
	Style       string `toml:"style,omitempty" json:"style,omitempty"`
	Display     string `toml:"display,omitempty" json:"display,omitempty"`
}

// CSSWeight returns the single weight or the weight range, whichever is set.
func (s Style) CSSWeight() string {
	if s.WeightRange != "" {
		return s.WeightRange
	}
	return s.Weight
}

// Typeface is one catalogue entry: a source file bound to a locale.
type Typeface struct {
	Label  string `toml:"label" json:"label"`
	Source string `toml:"source" json:"source"`
	Locale string `toml:"locale" json:"locale"`
	Style  Style  `toml:"style" json:"style"`
}

// ArchiveMember names the file to pull out of an archive download.
type ArchiveMember struct {
	File    string `toml:"file" json:"file"`
	Extract string `toml:"extract" json:"extract"`
}

// Download describes where a source file comes from.
type Download struct {
	Name     string         `toml:"name" json:"name"`
	URL      string         `toml:"url" json:"url"`
	Filename string         `toml:"filename" json:"filename"`
	Archive  *ArchiveMember `toml:"archive,omitempty" json:"archive,omitempty"`
}

// Catalogue is the ordered list of typefaces to build and the downloads that
// provide their sources.
type Catalogue struct {
	Typefaces []Typeface `toml:"typeface" json:"typefaces"`
	Downloads []Download `toml:"source" json:"sources"`
}

// Builtin returns the catalogue compiled into the binary.
func Builtin(sourceDir string) (*Catalogue, error) {
	return Decode(bytes.NewReader(builtin), sourceDir)
}

// Load reads the catalogue at path, or the built-in one when path is empty.
func Load(path, sourceDir string) (*Catalogue, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(sourceDir)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalogue", "open", path, err)
	}
	defer file.Close()
	return Decode(file, sourceDir)
}

// Decode parses a catalogue strictly, resolves relative sources against
// sourceDir and validates the result.
func Decode(r io.Reader, sourceDir string) (*Catalogue, error) {
	var cat Catalogue
	decoder := toml.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cat); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalogue", "parse", "", err)
	}
	cat.normalize(sourceDir)
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalogue) normalize(sourceDir string) {
	for i := range c.Typefaces {
		tf := &c.Typefaces[i]
		tf.Label = strings.TrimSpace(tf.Label)
		tf.Locale = strings.TrimSpace(tf.Locale)
		tf.Source = strings.TrimSpace(tf.Source)
		if tf.Source != "" && !filepath.IsAbs(tf.Source) && sourceDir != "" {
			tf.Source = filepath.Join(sourceDir, tf.Source)
		}
		tf.Style.Family = strings.TrimSpace(tf.Style.Family)
		tf.Style.Style = strings.ToLower(strings.TrimSpace(tf.Style.Style))
		tf.Style.Display = strings.TrimSpace(tf.Style.Display)
		if tf.Style.Display == "" {
			tf.Style.Display = "swap"
		}
	}
}

// Validate checks entry invariants: unique labels, required fields, one
// weight form at most, locales usable as distinct output directory names,
// and no two entries sharing a scratch directory name.
func (c *Catalogue) Validate() error {
	labels := make(map[string]struct{}, len(c.Typefaces))
	scratch := make(map[string]string, len(c.Typefaces))
	localeDirs := make(map[string]string)
	for i, tf := range c.Typefaces {
		where := fmt.Sprintf("typeface[%d]", i)
		if tf.Label == "" {
			return invalid(where + ": label is required")
		}
		where = fmt.Sprintf("typeface %q", tf.Label)
		if _, dup := labels[tf.Label]; dup {
			return invalid(where + ": duplicate label")
		}
		labels[tf.Label] = struct{}{}
		if tf.Source == "" {
			return invalid(where + ": source is required")
		}
		if tf.Locale == "" {
			return invalid(where + ": locale is required")
		}
		dir, err := workspace.LocaleDirName(tf.Locale)
		if err != nil {
			return invalid(fmt.Sprintf("%s: locale %q must be a plain directory name", where, tf.Locale))
		}
		// Case-insensitive filesystems would merge these into one directory.
		foldedDir := strings.ToLower(dir)
		if other, clash := localeDirs[foldedDir]; clash && other != tf.Locale {
			return invalid(fmt.Sprintf("%s: locale %q shares an output directory with locale %q", where, tf.Locale, other))
		}
		localeDirs[foldedDir] = tf.Locale
		if tf.Style.Family == "" {
			return invalid(where + ": style.family is required")
		}
		if tf.Style.Weight != "" && tf.Style.WeightRange != "" {
			return invalid(where + ": set style.weight or style.weight_range, not both")
		}
		switch tf.Style.Style {
		case "", "normal", "italic":
		default:
			return invalid(fmt.Sprintf("%s: style.style must be normal or italic, got %q", where, tf.Style.Style))
		}
		key := workspace.ScratchName(tf.Locale, tf.Label)
		if other, clash := scratch[key]; clash {
			return invalid(fmt.Sprintf("%s: label normalizes to the same directory as %q", where, other))
		}
		scratch[key] = tf.Label
	}

	names := make(map[string]struct{}, len(c.Downloads))
	for i, d := range c.Downloads {
		where := fmt.Sprintf("source[%d]", i)
		if d.Name != "" {
			where = fmt.Sprintf("source %q", d.Name)
		}
		if strings.TrimSpace(d.URL) == "" {
			return invalid(where + ": url is required")
		}
		if strings.TrimSpace(d.Filename) == "" || strings.ContainsAny(d.Filename, `/\`) {
			return invalid(where + ": filename must be a bare file name")
		}
		if _, dup := names[d.Filename]; dup {
			return invalid(where + ": duplicate filename " + d.Filename)
		}
		names[d.Filename] = struct{}{}
		if d.Archive != nil && strings.TrimSpace(d.Archive.Extract) == "" {
			return invalid(where + ": archive.extract is required")
		}
	}
	return nil
}

// Locales returns the locale tags in order of first appearance.
func (c *Catalogue) Locales() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, tf := range c.Typefaces {
		if _, ok := seen[tf.Locale]; ok {
			continue
		}
		seen[tf.Locale] = struct{}{}
		tags = append(tags, tf.Locale)
	}
	return tags
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "catalogue", "validate", message, nil)
}
