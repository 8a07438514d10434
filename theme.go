package lizechat

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrUnknownToken   = errors.New("lizechat: unknown design token")
	ErrAmbiguousToken = errors.New("lizechat: ambiguous design token")
)

// Theme is the CSS framework configuration: the files scanned for class
// usage, the design tokens added to the base theme, and enabled plugins.
type Theme struct {
	Content []string            `json:"content"`
	Colors  map[string]string   `json:"colors"`
	Fonts   map[string][]string `json:"fontFamily"`
	Plugins []string            `json:"plugins"`
}

// DefaultTheme returns the site theme.
func DefaultTheme() Theme {
	return Theme{
		Content: []string{"./src/**/*.{astro,html,js,jsx,md,mdx,svelte,ts,tsx,vue}"},
		Colors: map[string]string{
			"cyan":      "#00AEEF",
			"deep-blue": "#0054A6",
			"text-dark": "#1F2937",
			"bg-light":  "#F9FAFB",
		},
		Fonts: map[string][]string{
			"serif": {`"Noto Serif SC"`, `"Source Han Serif SC"`, "serif"},
			"sans":  {"-apple-system", "BlinkMacSystemFont", `"Segoe UI"`, "Roboto", "sans-serif"},
		},
		Plugins: []string{"@tailwindcss/typography"},
	}
}

// Utility prefixes that take a color token.
var colorPrefixes = []string{"text-", "bg-", "border-", "ring-", "fill-", "stroke-", "from-", "via-", "to-", "decoration-", "outline-", "divide-", "accent-", "caret-", "shadow-"}

// Resolve maps a style reference such as "text-cyan", "bg-bg-light",
// "font-serif" or a bare token name to the single declared value it names.
// Font stacks resolve to their CSS font-family list.
func (t Theme) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		ref = ref[i+1:]
	}

	var hits []string
	if v, ok := t.Colors[ref]; ok {
		hits = append(hits, v)
	}
	if v, ok := t.Fonts[ref]; ok {
		hits = append(hits, strings.Join(v, ", "))
	}
	if name, ok := strings.CutPrefix(ref, "font-"); ok {
		if v, ok := t.Fonts[name]; ok {
			hits = append(hits, strings.Join(v, ", "))
		}
	}
	for _, p := range colorPrefixes {
		if name, ok := strings.CutPrefix(ref, p); ok {
			if v, ok := t.Colors[name]; ok {
				hits = append(hits, v)
			}
		}
	}

	switch len(hits) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownToken, ref)
	case 1:
		return hits[0], nil
	}
	// "text-dark" is both a color token and text- applied to "dark"; identical
	// values are not ambiguous.
	for _, h := range hits[1:] {
		if h != hits[0] {
			return "", fmt.Errorf("%w: %q", ErrAmbiguousToken, ref)
		}
	}
	return hits[0], nil
}

// TokenNames lists every declared color and font token, sorted.
func (t Theme) TokenNames() []string {
	names := make([]string, 0, len(t.Colors)+len(t.Fonts))
	for k := range t.Colors {
		names = append(names, k)
	}
	for k := range t.Fonts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Covers reports whether path is matched by at least one content glob.
func (t Theme) Covers(p string) bool {
	p = cleanGlobPath(p)
	for _, g := range t.Content {
		if ok, err := doublestar.Match(cleanGlobPath(g), p); err == nil && ok {
			return true
		}
	}
	return false
}

// Uncovered returns the paths no content glob matches.
func (t Theme) Uncovered(paths []string) []string {
	var out []string
	for _, p := range paths {
		if !t.Covers(p) {
			out = append(out, p)
		}
	}
	return out
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate checks that globs compile, colors are hex values and font stacks
// are non-empty.
func (t Theme) Validate() error {
	var errs []error
	for _, g := range t.Content {
		if !doublestar.ValidatePattern(cleanGlobPath(g)) {
			errs = append(errs, fmt.Errorf("content glob %q is malformed", g))
		}
	}
	for name, v := range t.Colors {
		if !hexColor.MatchString(v) {
			errs = append(errs, fmt.Errorf("color %q: %q is not a hex color", name, v))
		}
	}
	for name, stack := range t.Fonts {
		if len(stack) == 0 {
			errs = append(errs, fmt.Errorf("font %q has an empty stack", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("lizechat: theme: %w", errors.Join(errs...))
	}
	return nil
}

type themeExport struct {
	Content []string `json:"content"`
	Theme   struct {
		Extend struct {
			Colors     map[string]string   `json:"colors"`
			FontFamily map[string][]string `json:"fontFamily"`
		} `json:"extend"`
	} `json:"theme"`
	Plugins []string `json:"plugins"`
}

// ExportTheme encodes the theme in the content/theme.extend/plugins shape the
// CSS framework reads.
func ExportTheme(t Theme) ([]byte, error) {
	var out themeExport
	out.Content = t.Content
	out.Theme.Extend.Colors = t.Colors
	out.Theme.Extend.FontFamily = t.Fonts
	out.Plugins = t.Plugins
	return json.MarshalIndent(out, "", "  ")
}

// ParseTheme decodes a theme written by ExportTheme and validates it.
func ParseTheme(b []byte) (Theme, error) {
	var in themeExport
	if err := json.Unmarshal(b, &in); err != nil {
		return Theme{}, fmt.Errorf("lizechat: decode theme: %w", err)
	}
	t := Theme{
		Content: in.Content,
		Colors:  in.Theme.Extend.Colors,
		Fonts:   in.Theme.Extend.FontFamily,
		Plugins: in.Plugins,
	}
	if len(t.Content) == 0 {
		return Theme{}, errors.New("lizechat: theme: no content globs")
	}
	if err := t.Validate(); err != nil {
		return Theme{}, err
	}
	return t, nil
}

// LoadTheme reads a theme file such as the theme.json created by `new`.
func LoadTheme(path string) (Theme, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("lizechat: read theme: %w", err)
	}
	return ParseTheme(b)
}

func cleanGlobPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(path.Clean(p), "./")
}
