package lizechat

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite index of validated entries. The registry supplies
// the date resolution order of entries read back.
type Store struct {
	db  *sql.DB
	reg *Registry
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string, reg *Registry) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while an index run writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, reg: reg}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    collection TEXT NOT NULL,
    slug TEXT NOT NULL,
    path TEXT NOT NULL,
    title TEXT NOT NULL,
    published TEXT NOT NULL,
    published_at TEXT NOT NULL DEFAULT '',
    date_source TEXT NOT NULL,
    dates TEXT NOT NULL,
    description TEXT NOT NULL,
    guest TEXT NOT NULL,
    host TEXT NOT NULL,
    slide_url TEXT NOT NULL,
    participants TEXT NOT NULL,
    tags TEXT NOT NULL,
    draft INTEGER NOT NULL DEFAULT 0,
    body TEXT NOT NULL,
    PRIMARY KEY (collection, slug)
);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE entries ADD COLUMN published_at TEXT NOT NULL DEFAULT '';`); err != nil {
		if !strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return err
		}
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_entries_published_at ON entries(published_at);`)
	return err
}

// sortableTime is a fixed-width UTC layout, so stored timestamps order
// correctly as strings.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

// entryOrder matches SortEntries: newest first, undated last.
const entryOrder = ` ORDER BY published_at = '' ASC, published_at DESC, collection, slug`

const entryColumns = `collection, slug, path, title, published, date_source, dates, description, guest, host, slide_url, participants, tags, draft, body`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner, reg *Registry) (Entry, error) {
	var (
		e                              Entry
		published, source, dates, tags string
		participants                   string
		draft                          int
	)
	if err := r.Scan(&e.Collection, &e.Slug, &e.Path, &e.Title, &published, &source, &dates,
		&e.Description, &e.Guest, &e.Host, &e.SlideURL, &participants, &tags, &draft, &e.Body); err != nil {
		return Entry{}, err
	}
	e.Tags = ParseTags(tags)
	e.Draft = draft == 1
	if participants != "" {
		if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
			return Entry{}, fmt.Errorf("decode participants of %s/%s: %w", e.Collection, e.Slug, err)
		}
	}
	e.Dates = make(map[string]time.Time)
	if dates != "" {
		raw := map[string]string{}
		if err := json.Unmarshal([]byte(dates), &raw); err != nil {
			return Entry{}, fmt.Errorf("decode dates of %s/%s: %w", e.Collection, e.Slug, err)
		}
		for k, v := range raw {
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return Entry{}, fmt.Errorf("decode date %s of %s/%s: %w", k, e.Collection, e.Slug, err)
			}
			e.Dates[k] = t
		}
	}
	if col, ok := reg.lookup(e.Collection); ok {
		e.dateOrder = col.Schema.DateFields
	} else if source != "" {
		e.dateOrder = []string{source}
	}
	return e, nil
}

// ListEntries returns non-draft entries of a collection ordered by resolved
// date descending. An empty collection lists all collections. If tag is
// non-empty, results are filtered to entries carrying that tag.
func (s *Store) ListEntries(collection, tag string) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries WHERE draft = 0`
	var args []any
	if collection != "" {
		q += ` AND collection = ?`
		args = append(args, collection)
	}
	if tag != "" {
		q += ` AND instr(lower(tags), ',' || ? || ',') > 0`
		args = append(args, normalizeTag(tag))
	}
	q += entryOrder
	return s.query(q, args...)
}

// ListAllEntries returns every entry including drafts.
func (s *Store) ListAllEntries() ([]Entry, error) {
	return s.query(`SELECT ` + entryColumns + ` FROM entries` + entryOrder)
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows, s.reg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns a single non-draft entry.
func (s *Store) GetEntry(collection, slug string) (Entry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE collection = ? AND slug = ? AND draft = 0`, collection, slug)
	return scanEntry(row, s.reg)
}

// ListTags returns a sorted, deduplicated slice of all tags of non-draft
// entries.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM entries WHERE draft = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// SaveEntry upserts an entry. Tags are normalized to lowercase.
func (s *Store) SaveEntry(e Entry) error {
	return saveEntry(s.db, e)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveEntry(db execer, e Entry) error {
	normalized := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	tagString := ""
	if len(normalized) > 0 {
		tagString = "," + strings.Join(normalized, ",") + ","
	}
	dates := make(map[string]string, len(e.Dates))
	for k, t := range e.Dates {
		dates[k] = t.UTC().Format(time.RFC3339Nano)
	}
	datesJSON, err := json.Marshal(dates)
	if err != nil {
		return err
	}
	participants := ""
	if len(e.Participants) > 0 {
		b, err := json.Marshal(e.Participants)
		if err != nil {
			return err
		}
		participants = string(b)
	}
	publishedAt := ""
	if t, ok := e.Published(); ok {
		publishedAt = t.UTC().Format(sortableTime)
	}
	draft := 0
	if e.Draft {
		draft = 1
	}
	_, err = db.Exec(`INSERT OR REPLACE INTO entries (`+entryColumns+`, published_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Collection, e.Slug, e.Path, e.Title, e.PublishedString(), e.DateSource(), string(datesJSON),
		e.Description, e.Guest, e.Host, e.SlideURL, participants, tagString, draft, e.Body, publishedAt)
	return err
}

// ReplaceCollection swaps the indexed entries of a collection for entries in
// one transaction.
func (s *Store) ReplaceCollection(collection string, entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM entries WHERE collection = ?`, collection); err != nil {
		return err
	}
	for _, e := range entries {
		if e.Collection != collection {
			return fmt.Errorf("lizechat: entry %s/%s does not belong to %s", e.Collection, e.Slug, collection)
		}
		if err := saveEntry(tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteEntry removes an entry.
func (s *Store) DeleteEntry(collection, slug string) error {
	_, err := s.db.Exec(`DELETE FROM entries WHERE collection = ? AND slug = ?`, collection, slug)
	return err
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
