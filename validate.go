package lizechat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldError reports why one front-matter field was rejected.
type FieldError struct {
	Field  string
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ValidationError collects every field failure of one entry.
type ValidationError struct {
	Collection string
	Slug       string
	Errs       []*FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, fe := range e.Errs {
		msgs[i] = fe.Error()
	}
	return fmt.Sprintf("lizechat: %s/%s: %s", e.Collection, e.Slug, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() []error {
	out := make([]error, len(e.Errs))
	for i, fe := range e.Errs {
		out[i] = fe
	}
	return out
}

// Has reports whether the named field failed.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate checks front-matter against the collection schema and builds an
// Entry. Each field is checked on its own; all failures are returned together.
// Keys the schema does not declare pass through into Entry.Extra.
func (c Collection) Validate(slug string, fm map[string]any) (Entry, error) {
	e := Entry{
		Collection: c.Name,
		Slug:       slug,
		Dates:      make(map[string]time.Time),
		dateOrder:  append([]string(nil), c.Schema.DateFields...),
	}
	var errs []*FieldError

	for _, f := range c.Schema.Fields {
		raw, present := fm[f.Name]
		if !present || raw == nil {
			if f.Required {
				errs = append(errs, &FieldError{Field: f.Name, Reason: "required"})
			}
			continue
		}
		if fe := assign(&e, f, raw); fe != nil {
			errs = append(errs, fe)
		}
	}

	for k, v := range fm {
		if _, declared := c.Schema.Field(k); declared {
			continue
		}
		if e.Extra == nil {
			e.Extra = make(map[string]any)
		}
		e.Extra[k] = v
	}

	if len(errs) > 0 {
		return e, &ValidationError{Collection: c.Name, Slug: slug, Errs: errs}
	}
	return e, nil
}

func assign(e *Entry, f Field, raw any) *FieldError {
	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return &FieldError{Field: f.Name, Reason: fmt.Sprintf("expected string, got %T", raw)}
		}
		setString(e, f.Name, s)
	case KindDate:
		t, err := CoerceDate(raw)
		if err != nil {
			return &FieldError{Field: f.Name, Reason: "invalid date", Err: err}
		}
		e.Dates[f.Name] = t
	case KindStringArray:
		list, err := stringList(raw)
		if err != nil {
			return &FieldError{Field: f.Name, Reason: "expected array of strings", Err: err}
		}
		switch f.Name {
		case FieldTags:
			e.Tags = list
		case FieldParticipants:
			e.Participants = list
		default:
			setExtra(e, f.Name, list)
		}
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return &FieldError{Field: f.Name, Reason: fmt.Sprintf("expected boolean, got %T", raw)}
		}
		if f.Name == FieldDraft {
			e.Draft = b
		} else {
			setExtra(e, f.Name, b)
		}
	}
	return nil
}

func setString(e *Entry, name, s string) {
	switch name {
	case FieldTitle:
		e.Title = s
	case FieldDescription:
		e.Description = s
	case FieldGuest:
		e.Guest = s
	case FieldHost:
		e.Host = s
	case FieldSlideURL:
		e.SlideURL = s
	default:
		setExtra(e, name, s)
	}
}

func setExtra(e *Entry, name string, v any) {
	if e.Extra == nil {
		e.Extra = make(map[string]any)
	}
	e.Extra[name] = v
}

func stringList(raw any) ([]string, error) {
	switch x := raw.(type) {
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for i, v := range x {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T", i, v)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.New("not an array")
}
