package notes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Frontmatter(t *testing.T) {
	content := []byte("---\ndate: 2024-03-15\nvalue: 5\nmood: \"4\"\ndone: true\ntitle: Morning run\ntags: [habit, fitness/run]\n---\n# Heading\nbody text #extra\n")
	n := Parse(File{BaseName: "2024-03-15"}, content)

	if n.Title != "Morning run" {
		t.Errorf("expected title from frontmatter, got %q", n.Title)
	}
	if v, ok := n.Frontmatter["value"].(int); !ok || v != 5 {
		t.Errorf("expected int value 5, got %#v", n.Frontmatter["value"])
	}
	if v, ok := n.Frontmatter["done"].(bool); !ok || !v {
		t.Errorf("expected bool done, got %#v", n.Frontmatter["done"])
	}
	if n.Body != "# Heading\nbody text #extra\n" {
		t.Errorf("unexpected body %q", n.Body)
	}

	want := []string{"#habit", "#fitness/run", "#extra"}
	if diff := cmp.Diff(want, n.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	n := Parse(File{BaseName: "2024-03-15-evening-walk"}, []byte("just text\n"))
	if n.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", n.Frontmatter)
	}
	if n.Title != "evening walk" {
		t.Errorf("expected title derived from filename, got %q", n.Title)
	}
}

func TestParse_TitleFromHeading(t *testing.T) {
	n := Parse(File{BaseName: "x"}, []byte("---\nvalue: 1\n---\n\n# Daily log\n\ntext\n"))
	if n.Title != "Daily log" {
		t.Errorf("expected H1 title, got %q", n.Title)
	}
}

func TestParse_BrokenFrontmatter(t *testing.T) {
	n := Parse(File{BaseName: "n"}, []byte("---\nvalue: [unclosed\n---\nbody\n"))
	if n.Frontmatter != nil {
		t.Errorf("expected broken frontmatter to be dropped, got %v", n.Frontmatter)
	}
	if n.Body != "body\n" {
		t.Errorf("expected body after the block, got %q", n.Body)
	}
}

func TestParse_StringTags(t *testing.T) {
	n := Parse(File{BaseName: "n"}, []byte("---\ntags: \"#a, b\"\n---\nheading # not a tag and #1 neither\n"))
	want := []string{"#a", "#b"}
	if diff := cmp.Diff(want, n.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestInlineField(t *testing.T) {
	n := Note{Body: "Some text\nmood:: 7\n- [sleep:: 8.5] hours\nsteps::\n"}

	tests := []struct {
		name  string
		want  string
		found bool
	}{
		{"mood", "7", true},
		{"sleep", "8.5", true},
		{"steps", "", true},
		{"missing", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := n.InlineField(tt.name)
		if ok != tt.found || got != tt.want {
			t.Errorf("InlineField(%q): expected (%q, %v), got (%q, %v)", tt.name, tt.want, tt.found, got, ok)
		}
	}
}

func TestInlineFieldPattern_Reused(t *testing.T) {
	if inlineFieldPattern("pages") != inlineFieldPattern("pages") {
		t.Error("expected the compiled pattern to be reused")
	}
	if inlineFieldPattern("pages") == inlineFieldPattern("mood") {
		t.Error("expected a pattern per field name")
	}

	a := Note{Body: "pages:: 12\n"}
	b := Note{Body: "pages:: 30 pages\n"}
	if v, _ := a.InlineField("pages"); v != "12" {
		t.Errorf("expected 12, got %q", v)
	}
	if v, _ := b.InlineField("pages"); v != "30 pages" {
		t.Errorf("expected %q, got %q", "30 pages", v)
	}
}

func TestHasTagPrefix(t *testing.T) {
	n := Note{Tags: []string{"#Habit/run"}}
	if !n.HasTagPrefix("#habit") {
		t.Error("expected case-insensitive prefix match")
	}
	if n.HasTagPrefix("#work") {
		t.Error("unexpected match for #work")
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery(`path:"/v/a.md" OR path:"b c.md" OR tag:habit OR Running`)
	want := Query{
		Paths: []string{"/v/a.md", "b c.md"},
		Tags:  []string{"#habit"},
		Terms: []string{"running"},
	}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	if !ParseQuery("").IsEmpty() {
		t.Error("expected empty query")
	}
}

func TestQueryMatch(t *testing.T) {
	n := Note{
		File:  File{Path: "/v/log/2024-03-15.md", RelPath: "log/2024-03-15.md"},
		Title: "Run",
		Body:  "went running",
		Tags:  []string{"#fitness"},
	}
	tests := []struct {
		query string
		want  bool
	}{
		{`path:"/v/log/2024-03-15.md"`, true},
		{`path:"log/2024-03-15.md"`, true},
		{`path:"other.md" OR tag:#fit`, true},
		{`tag:#work`, false},
		{`running`, true},
		{`swimming`, false},
		{``, true},
	}
	for _, tt := range tests {
		if got := ParseQuery(tt.query).Match(n); got != tt.want {
			t.Errorf("Match(%q): expected %v, got %v", tt.query, tt.want, got)
		}
	}
}

func TestVault_ListReadSearch(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("habits/2024-03-15.md", "---\nvalue: 3\n---\n#habit\n")
	write("journal/today.md", "nothing here\n")

	v := NewVault(root)
	ctx := context.Background()

	files, err := v.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	for _, f := range files {
		if f.Created.IsZero() {
			t.Errorf("expected a creation time for %s", f.RelPath)
		}
		if f.Created.After(time.Now().Add(time.Minute)) {
			t.Errorf("creation time in the future for %s", f.RelPath)
		}
	}

	var habitFile File
	for _, f := range files {
		if f.RelPath == "habits/2024-03-15.md" {
			habitFile = f
		}
	}
	if habitFile.BaseName != "2024-03-15" {
		t.Fatalf("expected base name without extension, got %q", habitFile.BaseName)
	}

	n, err := v.Read(ctx, habitFile)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if n.Frontmatter["value"] != 3 {
		t.Errorf("expected value 3, got %#v", n.Frontmatter["value"])
	}

	results, err := v.Search(ctx, "tag:#habit")
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 || results[0].RelPath != "habits/2024-03-15.md" {
		t.Errorf("expected the habit note, got %v", results)
	}

	results, err = v.Search(ctx, `path:"journal/today.md"`)
	if err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 path match, got %d", len(results))
	}
}

func TestVault_ReadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewVault().Read(ctx, File{Path: "/nope.md"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
