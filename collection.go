package lizechat

import (
	"errors"
	"fmt"
	"sort"
)

// Collection names used by the site.
const (
	CollectionBlog     = "blog"
	CollectionDialogue = "dialogue"
)

// Front-matter keys shared by both collections.
const (
	FieldTitle        = "title"
	FieldDate         = "date"
	FieldPubDate      = "pubDate"
	FieldDescription  = "description"
	FieldParticipants = "participants"
	FieldGuest        = "guest"
	FieldHost         = "host"
	FieldTags         = "tags"
	FieldSlideURL     = "slideUrl"
	FieldDraft        = "draft"
)

var (
	ErrUnknownCollection = errors.New("lizechat: unknown collection")
	ErrDuplicateName     = errors.New("lizechat: duplicate collection name")
)

// Schema is the ordered field list of a collection plus the priority order
// used to resolve its publication date.
type Schema struct {
	Fields     []Field  `json:"fields"`
	DateFields []string `json:"dateFields"`
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists the names of required fields in declaration order.
func (s Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// PrimaryDate is the current-name date field, written by tooling that fills
// in missing dates.
func (s Schema) PrimaryDate() string {
	if len(s.DateFields) == 0 {
		return ""
	}
	return s.DateFields[0]
}

func (s Schema) clone() Schema {
	out := Schema{
		Fields:     make([]Field, len(s.Fields)),
		DateFields: append([]string(nil), s.DateFields...),
	}
	copy(out.Fields, s.Fields)
	return out
}

// Collection is a named bucket of content entries validated by one schema.
// Its Name is also the folder name under the content root.
type Collection struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Schema Schema `json:"schema"`
}

// Registry maps collection names to their declarations. It is immutable once
// built.
type Registry struct {
	byName map[string]Collection
	names  []string
}

// NewRegistry builds a Registry, rejecting empty and duplicate names.
func NewRegistry(cols ...Collection) (*Registry, error) {
	r := &Registry{byName: make(map[string]Collection, len(cols))}
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("lizechat: collection name is empty")
		}
		if _, ok := r.byName[c.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, c.Name)
		}
		if c.Type == "" {
			c.Type = "content"
		}
		c.Schema = c.Schema.clone()
		r.byName[c.Name] = c
		r.names = append(r.names, c.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Names returns collection names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Get returns the named collection.
func (r *Registry) Get(name string) (Collection, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *Registry) lookup(name string) (Collection, bool) {
	if r == nil {
		return Collection{}, false
	}
	return r.Get(name)
}

// Collections returns every collection sorted by name.
func (r *Registry) Collections() []Collection {
	out := make([]Collection, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}

// SchemaOption adjusts the default schemas before the registry is built.
type SchemaOption func(map[string]*Collection)

// WithRequired marks a field of a collection as required.
func WithRequired(collection, field string) SchemaOption {
	return setRequired(collection, field, true)
}

// WithOptional marks a field of a collection as optional.
func WithOptional(collection, field string) SchemaOption {
	return setRequired(collection, field, false)
}

func setRequired(collection, field string, required bool) SchemaOption {
	return func(cols map[string]*Collection) {
		c, ok := cols[collection]
		if !ok {
			return
		}
		for i := range c.Schema.Fields {
			if c.Schema.Fields[i].Name == field {
				c.Schema.Fields[i].Required = required
			}
		}
	}
}

func entrySchema(dateOrder ...string) Schema {
	elem := KindString
	return Schema{
		Fields: []Field{
			{Name: FieldTitle, Kind: KindString, Required: true},
			{Name: FieldDate, Kind: KindDate},
			{Name: FieldPubDate, Kind: KindDate},
			{Name: FieldDescription, Kind: KindString},
			{Name: FieldParticipants, Kind: KindStringArray, Elem: &elem},
			{Name: FieldGuest, Kind: KindString},
			{Name: FieldHost, Kind: KindString},
			{Name: FieldTags, Kind: KindStringArray, Elem: &elem},
			{Name: FieldSlideURL, Kind: KindString},
			{Name: FieldDraft, Kind: KindBool},
		},
		DateFields: dateOrder,
	}
}

// DefaultCollections returns the blog and dialogue declarations. Only title
// is required so that older files without dates still load.
func DefaultCollections(opts ...SchemaOption) []Collection {
	cols := map[string]*Collection{
		CollectionBlog: {
			Name:   CollectionBlog,
			Type:   "content",
			Schema: entrySchema(FieldPubDate, FieldDate),
		},
		CollectionDialogue: {
			Name:   CollectionDialogue,
			Type:   "content",
			Schema: entrySchema(FieldDate, FieldPubDate),
		},
	}
	for _, opt := range opts {
		opt(cols)
	}
	return []Collection{*cols[CollectionBlog], *cols[CollectionDialogue]}
}

// DefaultRegistry returns the site registry.
func DefaultRegistry(opts ...SchemaOption) *Registry {
	r, err := NewRegistry(DefaultCollections(opts...)...)
	if err != nil {
		panic(err)
	}
	return r
}
