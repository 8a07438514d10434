package lizechat

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// SplitFrontMatter decodes the leading YAML block of a content file into a
// map and returns the remaining body. Files without front-matter yield an
// empty map and the whole input as body.
func SplitFrontMatter(content []byte) (map[string]any, []byte, error) {
	fm := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(content), &fm, yamlFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("parse front-matter: %w", err)
	}
	return fm, body, nil
}

func splitNode(content []byte) (*yaml.Node, []byte, error) {
	var doc yaml.Node
	body, err := frontmatter.Parse(bytes.NewReader(content), &doc, yamlFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("parse front-matter: %w", err)
	}
	if doc.Kind == 0 {
		return nil, body, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("parse front-matter: not a mapping")
	}
	return doc.Content[0], body, nil
}

func mappingValue(m *yaml.Node, key string) (int, *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i, m.Content[i+1]
		}
	}
	return -1, nil
}

// setMapping sets key to a scalar. An empty tag lets the encoder pick the
// plain form, so dates are written unquoted.
func setMapping(m *yaml.Node, key, value, tag string, style yaml.Style) {
	if _, v := mappingValue(m, key); v != nil {
		v.Kind = yaml.ScalarNode
		v.Tag = tag
		v.Value = value
		v.Style = style
		return
	}
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Style: style},
	)
}

func renameMapping(m *yaml.Node, from, to string) bool {
	i, _ := mappingValue(m, from)
	if i < 0 {
		return false
	}
	m.Content[i].Value = to
	return true
}

func deleteMapping(m *yaml.Node, key string) {
	if i, _ := mappingValue(m, key); i >= 0 {
		m.Content = append(m.Content[:i], m.Content[i+2:]...)
	}
}

func assemble(m *yaml.Node, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode front-matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n\n")
	buf.Write(bytes.TrimLeft(body, "\r\n"))
	return buf.Bytes(), nil
}

// TitleFromFilename derives a title from a content file name: the name
// without directory and extension.
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// FixResult reports what FixFrontMatter changed.
type FixResult struct {
	Content      []byte
	AddedTitle   bool
	AddedDate    bool
	MigratedFrom string
	Removed      []string
}

// Changed reports whether the file needs rewriting.
func (r FixResult) Changed() bool {
	return r.AddedTitle || r.AddedDate || r.MigratedFrom != "" || len(r.Removed) > 0
}

// FixFrontMatter brings a content file in line with its collection: a
// missing title is taken from the file name, a legacy date field is renamed
// to the primary one when the primary is absent, and a missing date is set
// to now. Keys listed in drop are removed.
func FixFrontMatter(c Collection, content []byte, filename string, now time.Time, drop ...string) (FixResult, error) {
	m, body, err := splitNode(content)
	if err != nil {
		return FixResult{}, err
	}
	if m == nil {
		m = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	var res FixResult
	if _, v := mappingValue(m, FieldTitle); v == nil || strings.TrimSpace(v.Value) == "" {
		setMapping(m, FieldTitle, TitleFromFilename(filename), "!!str", yaml.DoubleQuotedStyle)
		res.AddedTitle = true
	}

	primary := c.Schema.PrimaryDate()
	if primary != "" {
		if _, v := mappingValue(m, primary); v == nil {
			for _, legacy := range c.Schema.DateFields[1:] {
				if renameMapping(m, legacy, primary) {
					res.MigratedFrom = legacy
					break
				}
			}
			if res.MigratedFrom == "" {
				setMapping(m, primary, now.Format(dateLayout), "", 0)
				res.AddedDate = true
			}
		}
	}

	for _, key := range drop {
		if _, v := mappingValue(m, key); v != nil {
			deleteMapping(m, key)
			res.Removed = append(res.Removed, key)
		}
	}

	if !res.Changed() {
		res.Content = content
		return res, nil
	}
	res.Content, err = assemble(m, body)
	return res, err
}

var unsafeFilename = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename removes characters that are not allowed in file names on
// common filesystems.
func SanitizeFilename(name string) string {
	return unsafeFilename.ReplaceAllString(name, "")
}

var (
	reMarkup   = regexp.MustCompile(`[#*_\[\]()]`)
	reNewlines = regexp.MustCompile(`\n+`)
	reSentence = regexp.MustCompile(`[。！？]`)
)

// Summarize returns a plain-text excerpt of body of at most max runes,
// preferring to end on a full sentence.
func Summarize(body string, max int) string {
	text := reMarkup.ReplaceAllString(body, "")
	text = strings.TrimSpace(reNewlines.ReplaceAllString(text, " "))
	if text == "" || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	window := string(runes[:max])
	if locs := reSentence.FindAllStringIndex(window, -1); len(locs) > 0 {
		return window[:locs[len(locs)-1][1]]
	}
	return window + "..."
}
