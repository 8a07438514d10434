package lizechat

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/eringen/lizechat/scaffold"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestLoader(t *testing.T, strict bool) (*Loader, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{CollectionBlog, CollectionDialogue} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	return &Loader{Root: root, Registry: DefaultRegistry(), Strict: strict, Logger: NewLogger(&buf, "debug")}, &buf
}

func TestLoadScaffoldedSite(t *testing.T) {
	dir := t.TempDir()
	if _, err := scaffold.Render(dir, scaffold.Data{ProjectName: "site", SiteName: "Test Site", Today: "2025-03-01"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	cfg := SiteConfig{ContentDir: filepath.Join(dir, "src", "content"), Strict: true}
	l := NewLoader(cfg, DefaultRegistry(), NewLogger(&bytes.Buffer{}, "info"))

	cat, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range l.Registry.Names() {
		if len(cat.Entries[name]) != 1 {
			t.Errorf("%s: got %d entries, want 1", name, len(cat.Entries[name]))
		}
	}
	post, ok := cat.Entry(CollectionBlog, "hello-world")
	if !ok {
		t.Fatal("hello-world not loaded")
	}
	if post.Title != "Welcome to Test Site" || post.DateSource() != FieldPubDate {
		t.Errorf("post = %q from %q", post.Title, post.DateSource())
	}
	talk, ok := cat.Entry(CollectionDialogue, "first-conversation")
	if !ok {
		t.Fatal("first-conversation not loaded")
	}
	if talk.DateSource() != FieldDate || len(talk.Participants) != 2 {
		t.Errorf("dialogue = %+v", talk)
	}
}

func TestLoadMissingFolder(t *testing.T) {
	l, _ := newTestLoader(t, false)
	if err := os.Remove(filepath.Join(l.Root, CollectionDialogue)); err != nil {
		t.Fatal(err)
	}
	_, err := l.Load(context.Background())
	if !errors.Is(err, ErrMissingFolder) {
		t.Fatalf("err = %v, want ErrMissingFolder", err)
	}
}

func TestLoadSkipsUndeclaredFolder(t *testing.T) {
	l, logs := newTestLoader(t, false)
	writeFile(t, filepath.Join(l.Root, "notes", "a.md"), "---\ntitle: A\n---\n")
	writeFile(t, filepath.Join(l.Root, CollectionBlog, "b.md"), "---\ntitle: B\n---\n")

	undeclared, err := l.CheckFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(undeclared) != 1 || undeclared[0] != "notes" {
		t.Errorf("undeclared = %v", undeclared)
	}
	cat, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.All()) != 1 {
		t.Errorf("got %d entries, want 1", len(cat.All()))
	}
	if !bytes.Contains(logs.Bytes(), []byte("notes")) {
		t.Errorf("expected a warning about notes, got %s", logs.String())
	}
}

func TestLoadProblems(t *testing.T) {
	for _, strict := range []bool{false, true} {
		l, _ := newTestLoader(t, strict)
		writeFile(t, filepath.Join(l.Root, CollectionBlog, "good.md"), "---\ntitle: Good\npubDate: 2024-01-01\n---\n")
		writeFile(t, filepath.Join(l.Root, CollectionBlog, "untitled.md"), "---\npubDate: 2024-01-01\n---\n")
		writeFile(t, filepath.Join(l.Root, CollectionDialogue, "baddate.mdx"), "---\ntitle: X\ndate: someday\n---\n")
		writeFile(t, filepath.Join(l.Root, CollectionDialogue, "readme.txt"), "ignored")

		cat, err := l.Load(context.Background())
		if strict && err == nil {
			t.Fatal("strict load should fail")
		}
		if !strict && err != nil {
			t.Fatalf("lenient load failed: %v", err)
		}
		if cat == nil {
			t.Fatal("catalog should be returned")
		}
		if len(cat.Problems) != 2 {
			t.Errorf("strict=%v: got %d problems, want 2", strict, len(cat.Problems))
		}
		if _, ok := cat.Entry(CollectionBlog, "good"); !ok {
			t.Errorf("strict=%v: good entry missing", strict)
		}
	}
}

func TestLoadNestedSlug(t *testing.T) {
	l, _ := newTestLoader(t, true)
	writeFile(t, filepath.Join(l.Root, CollectionBlog, "2024", "spring.md"), "---\ntitle: Spring\n---\n")
	cat, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	e, ok := cat.Entry(CollectionBlog, "2024/spring")
	if !ok {
		t.Fatalf("nested entry missing: %+v", cat.Entries)
	}
	if e.Link() != "/blog/2024/spring" {
		t.Errorf("Link = %q", e.Link())
	}
}

func TestLoadCanceled(t *testing.T) {
	l, _ := newTestLoader(t, false)
	writeFile(t, filepath.Join(l.Root, CollectionBlog, "a.md"), "---\ntitle: A\n---\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSortEntries(t *testing.T) {
	blog := mustCollection(t, DefaultRegistry(), CollectionBlog)
	mk := func(slug, date string) Entry {
		fm := map[string]any{FieldTitle: slug}
		if date != "" {
			fm[FieldPubDate] = date
		}
		e, err := blog.Validate(slug, fm)
		if err != nil {
			t.Fatal(err)
		}
		return e
	}
	entries := []Entry{mk("old", "2020-01-01"), mk("none-b", ""), mk("new", "2024-01-01"), mk("none-a", "")}
	SortEntries(entries)
	var got []string
	for _, e := range entries {
		got = append(got, e.Slug)
	}
	if diff := cmp.Diff([]string{"new", "old", "none-a", "none-b"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
