package lizechat

import (
	"database/sql"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = sql.ErrNoRows

// EntryCache is an in-memory cache of non-draft entries and tags with TTL.
type EntryCache struct {
	mu      sync.RWMutex
	entries []Entry
	tags    []string
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewEntryCache creates an EntryCache backed by the given Store.
func NewEntryCache(s *Store, ttl time.Duration) *EntryCache {
	return &EntryCache{store: s, ttl: ttl}
}

func (c *EntryCache) valid() bool {
	return c.entries != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *EntryCache) Invalidate() {
	c.mu.Lock()
	c.entries = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *EntryCache) load() error {
	if c.valid() {
		return nil
	}
	entries, err := c.store.ListEntries("", "")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}
	c.entries = entries
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached entries and tags after ensuring the cache is
// fresh. It tries a read lock first and only takes the write lock to reload.
func (c *EntryCache) ensureLoaded() ([]Entry, []string, error) {
	c.mu.RLock()
	if c.valid() {
		entries, tags := c.entries, c.tags
		c.mu.RUnlock()
		return entries, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.entries, c.tags, nil
}

// ListEntries returns entries of a collection ("" for all), optionally
// filtered by tag.
func (c *EntryCache) ListEntries(collection, tag string) ([]Entry, error) {
	entries, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if collection == "" && tag == "" {
		return entries, nil
	}
	normalized := normalizeTag(tag)
	var filtered []Entry
	for _, e := range entries {
		if collection != "" && e.Collection != collection {
			continue
		}
		if tag == "" || hasTag(e, normalized) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func hasTag(e Entry, normalized string) bool {
	for _, t := range e.Tags {
		if normalizeTag(t) == normalized {
			return true
		}
	}
	return false
}

// ListTags returns all unique tags of non-draft entries.
func (c *EntryCache) ListTags() ([]string, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetEntry returns a single entry from the cache.
func (c *EntryCache) GetEntry(collection, slug string) (Entry, error) {
	entries, _, err := c.ensureLoaded()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Collection == collection && e.Slug == slug {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
