package lizechat

import "time"

// Kind is the primitive type of a front-matter field.
type Kind int

const (
	KindString Kind = iota
	KindDate
	KindStringArray
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindStringArray:
		return "array"
	case KindBool:
		return "boolean"
	}
	return "unknown"
}

// MarshalText lets schema descriptors serialize kinds by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field describes one front-matter key of a collection schema.
type Field struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Required bool   `json:"required"`
	Elem     *Kind  `json:"elem,omitempty"` // element kind for arrays
}

// Entry is a content file whose front-matter passed its collection schema.
type Entry struct {
	Collection   string
	Slug         string
	Path         string
	Title        string
	Description  string
	Guest        string
	Host         string
	SlideURL     string
	Participants []string
	Tags         []string
	Draft        bool

	// Dates holds every date field that was present, keyed by field name.
	// The legacy and current publication-date names are parsed independently.
	Dates map[string]time.Time
	// Extra carries unknown front-matter keys through untouched.
	Extra map[string]any
	Body  string

	dateOrder []string
}

// Date returns the independently parsed value of a single date field.
func (e Entry) Date(name string) (time.Time, bool) {
	t, ok := e.Dates[name]
	return t, ok
}

// Published resolves the logical publication date: the first present field
// in the collection's date priority list wins, otherwise it is absent.
func (e Entry) Published() (time.Time, bool) {
	_, t, ok := e.resolveDate()
	return t, ok
}

// DateSource names the field Published resolved from, or "" when undated.
func (e Entry) DateSource() string {
	name, _, _ := e.resolveDate()
	return name
}

func (e Entry) resolveDate() (string, time.Time, bool) {
	for _, name := range e.dateOrder {
		if t, ok := e.Dates[name]; ok {
			return name, t, true
		}
	}
	return "", time.Time{}, false
}

// PublishedString formats the resolved date as YYYY-MM-DD, or "" when undated.
func (e Entry) PublishedString() string {
	if t, ok := e.Published(); ok {
		return t.Format(dateLayout)
	}
	return ""
}

// Link is the site-relative URL of the entry.
func (e Entry) Link() string {
	return "/" + e.Collection + "/" + e.Slug
}

const dateLayout = "2006-01-02"
