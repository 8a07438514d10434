package lizechat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/labstack/gommon/log"
)

var ErrMissingFolder = errors.New("lizechat: collection folder missing")

// ContentExts are the file extensions the loader reads as entries.
var ContentExts = []string{".md", ".mdx"}

// Problem is a content file that could not be turned into an Entry.
type Problem struct {
	Collection string
	Path       string
	Err        error
}

// Catalog is the result of loading every collection from disk.
type Catalog struct {
	Entries  map[string][]Entry
	Problems []Problem
}

// Entry looks up one entry by collection and slug.
func (c *Catalog) Entry(collection, slug string) (Entry, bool) {
	for _, e := range c.Entries[collection] {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entry{}, false
}

// All returns every entry across collections, newest first.
func (c *Catalog) All() []Entry {
	var out []Entry
	for _, es := range c.Entries {
		out = append(out, es...)
	}
	SortEntries(out)
	return out
}

// Loader reads collection folders under Root and validates each file.
type Loader struct {
	Root     string
	Registry *Registry
	Strict   bool
	Logger   *log.Logger
}

// NewLoader returns a Loader for the configured content directory.
func NewLoader(cfg SiteConfig, reg *Registry, logger *log.Logger) *Loader {
	return &Loader{Root: cfg.ContentDir, Registry: reg, Strict: cfg.Strict, Logger: logger}
}

// CheckFolders verifies that every declared collection has a same-named
// folder and returns folders that no collection declares.
func (l *Loader) CheckFolders() (undeclared []string, err error) {
	var missing []string
	for _, name := range l.Registry.Names() {
		fi, err := os.Stat(filepath.Join(l.Root, name))
		if err != nil || !fi.IsDir() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w under %s: %s", ErrMissingFolder, l.Root, strings.Join(missing, ", "))
	}
	dirs, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, fmt.Errorf("lizechat: read content root: %w", err)
	}
	for _, d := range dirs {
		if !d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		if _, ok := l.Registry.Get(d.Name()); !ok {
			undeclared = append(undeclared, d.Name())
		}
	}
	return undeclared, nil
}

// Load validates every entry of every collection. A missing collection
// folder always fails. Invalid entries are recorded as problems and only
// fail the load when Strict is set.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	undeclared, err := l.CheckFolders()
	if err != nil {
		return nil, err
	}
	for _, d := range undeclared {
		l.logger().Warnf("folder %s has no declared collection, skipped", filepath.Join(l.Root, d))
	}

	cat := &Catalog{Entries: make(map[string][]Entry)}
	for _, col := range l.Registry.Collections() {
		entries, problems, err := l.LoadCollection(ctx, col)
		if err != nil {
			return nil, err
		}
		cat.Entries[col.Name] = entries
		cat.Problems = append(cat.Problems, problems...)
	}
	for _, p := range cat.Problems {
		l.logger().Warnf("%s: %v", p.Path, p.Err)
	}
	if l.Strict && len(cat.Problems) > 0 {
		errs := make([]error, len(cat.Problems))
		for i, p := range cat.Problems {
			errs[i] = p.Err
		}
		return cat, fmt.Errorf("lizechat: %d invalid entries: %w", len(cat.Problems), errors.Join(errs...))
	}
	l.logger().Infof("loaded %d entries from %d collections", len(cat.All()), len(cat.Entries))
	return cat, nil
}

// LoadCollection reads one collection folder.
func (l *Loader) LoadCollection(ctx context.Context, col Collection) ([]Entry, []Problem, error) {
	dir := filepath.Join(l.Root, col.Name)
	var entries []Entry
	var problems []Problem
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !IsContentFile(d.Name()) {
			return nil
		}
		e, err := l.LoadFile(col, path)
		if err != nil {
			problems = append(problems, Problem{Collection: col.Name, Path: path, Err: err})
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("lizechat: walk %s: %w", dir, err)
	}
	SortEntries(entries)
	return entries, problems, nil
}

// LoadFile parses and validates a single content file.
func (l *Loader) LoadFile(col Collection, path string) (Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	fm, body, err := SplitFrontMatter(content)
	if err != nil {
		return Entry{}, err
	}
	rel, err := filepath.Rel(filepath.Join(l.Root, col.Name), path)
	if err != nil {
		rel = filepath.Base(path)
	}
	slug := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	e, err := col.Validate(slug, fm)
	if err != nil {
		return Entry{}, err
	}
	e.Path = path
	e.Body = string(body)
	return e, nil
}

func (l *Loader) logger() *log.Logger {
	if l.Logger == nil {
		l.Logger = NewLogger(nil, "info")
	}
	return l.Logger
}

// IsContentFile reports whether name has a content extension.
func IsContentFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ContentExts {
		if ext == e {
			return true
		}
	}
	return false
}

// SortEntries orders entries by resolved publication date, newest first.
// Undated entries go last, ordered by slug.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, okI := entries[i].Published()
		tj, okJ := entries[j].Published()
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.After(tj)
		case okI != okJ:
			return okI
		}
		if entries[i].Collection != entries[j].Collection {
			return entries[i].Collection < entries[j].Collection
		}
		return entries[i].Slug < entries[j].Slug
	})
}
