package lizechat

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FixDir runs FixFrontMatter over every content file of a collection and
// rewrites the files that changed. With dryRun nothing is written.
func (l *Loader) FixDir(col Collection, now time.Time, dryRun bool, drop ...string) (map[string]FixResult, error) {
	dir := filepath.Join(l.Root, col.Name)
	results := make(map[string]FixResult)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsContentFile(d.Name()) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := FixFrontMatter(col, content, d.Name(), now, drop...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !res.Changed() {
			return nil
		}
		results[path] = res
		if dryRun {
			return nil
		}
		return os.WriteFile(path, res.Content, 0o644)
	})
	if err != nil {
		return nil, fmt.Errorf("lizechat: fix %s: %w", col.Name, err)
	}
	return results, nil
}

// ImportDir copies markdown files from src into a collection folder,
// sanitizing names and filling in missing front-matter. Existing files are
// overwritten and reported.
func (l *Loader) ImportDir(src string, col Collection, now time.Time) (copied, overwritten []string, err error) {
	files, err := os.ReadDir(src)
	if err != nil {
		return nil, nil, fmt.Errorf("lizechat: import: %w", err)
	}
	dst := filepath.Join(l.Root, col.Name)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, nil, err
	}
	var errs []error
	for _, f := range files {
		if f.IsDir() || !IsContentFile(f.Name()) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(src, f.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name := SanitizeFilename(f.Name())
		res, err := FixFrontMatter(col, content, name, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name(), err))
			continue
		}
		target := filepath.Join(dst, name)
		if _, err := os.Stat(target); err == nil {
			overwritten = append(overwritten, name)
		}
		if err := os.WriteFile(target, res.Content, 0o644); err != nil {
			errs = append(errs, err)
			continue
		}
		copied = append(copied, name)
	}
	return copied, overwritten, errors.Join(errs...)
}

// Deletion records where a deleted file lived.
type Deletion struct {
	Collection string
	Name       string
}

// DeleteFiles removes content files by file name, searching collections in
// registry order. Only regular files are removed. Names found nowhere are
// returned in notFound.
func (l *Loader) DeleteFiles(names []string) (deleted []Deletion, notFound []string, err error) {
	for _, name := range names {
		if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
			return deleted, notFound, fmt.Errorf("lizechat: %q is not a plain file name", name)
		}
		found := false
		for _, col := range l.Registry.Names() {
			path := filepath.Join(l.Root, col, name)
			fi, err := os.Lstat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			if err := os.Remove(path); err != nil {
				return deleted, notFound, err
			}
			deleted = append(deleted, Deletion{Collection: col, Name: name})
			found = true
			break
		}
		if !found {
			notFound = append(notFound, name)
		}
	}
	return deleted, notFound, nil
}

// EntryFile resolves the on-disk path of an entry slug, trying each content
// extension.
func (l *Loader) EntryFile(collection, slug string) (string, error) {
	if _, ok := l.Registry.Get(collection); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	if slug == "" || strings.Contains(slug, "..") {
		return "", ErrNotFound
	}
	for _, ext := range ContentExts {
		p := filepath.Join(l.Root, collection, filepath.FromSlash(slug)+ext)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", ErrNotFound
}
