package lizechat

import (
	"strings"
	"testing"
	"time"
)

var fixNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSplitFrontMatter(t *testing.T) {
	fm, body, err := SplitFrontMatter([]byte("---\ntitle: Hello\ntags: [a, b]\npubDate: 2024-01-15\n---\n\nBody text\n"))
	if err != nil {
		t.Fatal(err)
	}
	if fm["title"] != "Hello" {
		t.Errorf("title = %v", fm["title"])
	}
	if _, err := CoerceDate(fm["pubDate"]); err != nil {
		t.Errorf("pubDate not coercible: %v (%T)", err, fm["pubDate"])
	}
	if !strings.Contains(string(body), "Body text") {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontMatterNone(t *testing.T) {
	fm, body, err := SplitFrontMatter([]byte("# Just markdown\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(fm) != 0 {
		t.Errorf("expected empty front-matter, got %v", fm)
	}
	if !strings.Contains(string(body), "# Just markdown") {
		t.Errorf("body = %q", body)
	}
}

func fixedFrontMatter(t *testing.T, content []byte) map[string]any {
	t.Helper()
	fm, _, err := SplitFrontMatter(content)
	if err != nil {
		t.Fatalf("rewritten file does not parse: %v\n%s", err, content)
	}
	return fm
}

func TestFixFrontMatterMigratesLegacyDate(t *testing.T) {
	blog := mustCollection(t, DefaultRegistry(), CollectionBlog)
	in := []byte("---\ntitle: Old post\ndate: 2021-04-02\n---\n\nText\n")
	res, err := FixFrontMatter(blog, in, "old-post.md", fixNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.MigratedFrom != FieldDate || res.AddedDate || res.AddedTitle {
		t.Errorf("unexpected result: %+v", res)
	}
	fm := fixedFrontMatter(t, res.Content)
	if _, ok := fm[FieldDate]; ok {
		t.Error("legacy date key should be renamed")
	}
	got, err := CoerceDate(fm[FieldPubDate])
	if err != nil || !got.Equal(time.Date(2021, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("pubDate = %v, %v", got, err)
	}
	if !strings.HasSuffix(string(res.Content), "Text\n") {
		t.Errorf("body lost: %q", res.Content)
	}
}

func TestFixFrontMatterAddsMissing(t *testing.T) {
	blog := mustCollection(t, DefaultRegistry(), CollectionBlog)
	res, err := FixFrontMatter(blog, []byte("No front-matter here.\n"), "my-first_note.md", fixNow)
	if err != nil {
		t.Fatal(err)
	}
	if !res.AddedTitle || !res.AddedDate {
		t.Errorf("unexpected result: %+v", res)
	}
	fm := fixedFrontMatter(t, res.Content)
	if fm[FieldTitle] != "my-first_note" {
		t.Errorf("title = %v", fm[FieldTitle])
	}
	got, err := CoerceDate(fm[FieldPubDate])
	if err != nil || !got.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("pubDate = %v, %v", got, err)
	}
	if _, err := blog.Validate("my-first_note", fm); err != nil {
		t.Errorf("fixed file should validate: %v", err)
	}
}

func TestFixFrontMatterKeepsCurrentDate(t *testing.T) {
	dialogue := mustCollection(t, DefaultRegistry(), CollectionDialogue)
	in := []byte("---\ntitle: Talk\ndate: 2024-01-01\npubDate: 2024-02-02\n---\nBody\n")
	res, err := FixFrontMatter(dialogue, in, "talk.md", fixNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed() {
		t.Errorf("nothing should change: %+v", res)
	}
	if string(res.Content) != string(in) {
		t.Error("unchanged content should be returned as is")
	}
}

func TestFixFrontMatterDrop(t *testing.T) {
	blog := mustCollection(t, DefaultRegistry(), CollectionBlog)
	in := []byte("---\ntitle: T\npubDate: 2024-01-01\nauthor: someone\n---\nBody\n")
	res, err := FixFrontMatter(blog, in, "t.md", fixNow, "author", "missing")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Removed) != 1 || res.Removed[0] != "author" {
		t.Errorf("Removed = %v", res.Removed)
	}
	if _, ok := fixedFrontMatter(t, res.Content)["author"]; ok {
		t.Error("author should be dropped")
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hello-world.md", "hello-world"},
		{"notes/ai_and_us.mdx", "ai_and_us"},
		{"对话录.md", "对话录"},
		{"v1.2 release.md", "v1.2 release"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(`a<b>c:"d"/e\f|g?h*.md`); got != "abcdefgh.md" {
		t.Errorf("SanitizeFilename = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize("# Title\n\n**Short** text", 150); got != "Title Short text" {
		t.Errorf("Summarize short = %q", got)
	}
	long := strings.Repeat("这是一句话。", 40)
	got := Summarize(long, 20)
	if !strings.HasSuffix(got, "。") {
		t.Errorf("Summarize should end on a sentence: %q", got)
	}
	plain := strings.Repeat("a", 50)
	if got := Summarize(plain, 10); got != strings.Repeat("a", 10)+"..." {
		t.Errorf("Summarize plain = %q", got)
	}
}
