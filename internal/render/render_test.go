package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vcarciu/vesti-bune/internal/news"
)

func article(section, link string, published time.Time) news.Article {
	return news.Article{
		Section:      section,
		Kind:         news.KindRO,
		Source:       "Test",
		Title:        "Titlu " + link,
		Link:         link,
		PublishedUTC: published,
	}
}

func TestBuildFlattensNewestFirst(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	sections := map[string][]news.Article{
		"romania": {
			article("romania", "https://a.ro/1", now.Add(-2*time.Hour)),
			article("romania", "https://a.ro/2", now.Add(-1*time.Hour)),
		},
		"science": {
			article("science", "https://b.ro/1", now.Add(-30*time.Minute)),
		},
		"satire": {
			article("satire", "https://satira.ro/1", now),
		},
	}

	p := Build(sections, []string{"romania", "science"}, 60, now)

	if p.Count != 3 {
		t.Fatalf("Count = %d, want 3 (satire must stay out of the flat list)", p.Count)
	}
	wantOrder := []string{"https://b.ro/1", "https://a.ro/2", "https://a.ro/1"}
	for i, want := range wantOrder {
		if p.Items[i].Link != want {
			t.Errorf("Items[%d].Link = %q, want %q", i, p.Items[i].Link, want)
		}
	}
	if p.GeneratedUTC != "2026-08-23T10:00:00Z" {
		t.Errorf("GeneratedUTC = %q", p.GeneratedUTC)
	}
	if len(p.Sections["satire"]) != 1 {
		t.Error("satire section missing from grouped output")
	}
}

func TestBuildAppliesFlatCap(t *testing.T) {
	now := time.Now().UTC()
	var arts []news.Article
	for i := 0; i < 10; i++ {
		arts = append(arts, article("romania", "https://a.ro/"+string(rune('a'+i)), now.Add(-time.Duration(i)*time.Minute)))
	}
	sections := map[string][]news.Article{"romania": arts}

	p := Build(sections, []string{"romania"}, 4, now)
	if p.Count != 4 || len(p.Items) != 4 {
		t.Errorf("Count = %d, len(Items) = %d, want 4", p.Count, len(p.Items))
	}
	// Full section still present in grouped form.
	if len(p.Sections["romania"]) != 10 {
		t.Errorf("grouped section trimmed: %d", len(p.Sections["romania"]))
	}
}

func TestBuildIsDeterministicOnPublishTies(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	sections := map[string][]news.Article{
		"romania": {
			article("romania", "https://a.ro/z", now),
			article("romania", "https://a.ro/a", now),
		},
	}

	first := Build(sections, []string{"romania"}, 60, now)
	second := Build(sections, []string{"romania"}, 60, now)
	for i := range first.Items {
		if first.Items[i].Link != second.Items[i].Link {
			t.Fatalf("ordering not deterministic at %d", i)
		}
	}
	if first.Items[0].Link != "https://a.ro/a" {
		t.Errorf("tie not broken by link: got %q first", first.Items[0].Link)
	}
}

func TestWriteProducesReadableJSON(t *testing.T) {
	now := time.Now().UTC()
	path := filepath.Join(t.TempDir(), "out", "news.json")

	p := Build(map[string][]news.Article{
		"romania": {article("romania", "https://a.ro/1", now)},
	}, []string{"romania"}, 60, now)

	if err := Write(path, p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	var got Payload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Count != 1 || len(got.Items) != 1 {
		t.Errorf("round trip lost items: count=%d", got.Count)
	}
	if got.Items[0].Link != "https://a.ro/1" {
		t.Errorf("Link = %q", got.Items[0].Link)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.json")

	p := Build(map[string][]news.Article{}, nil, 60, time.Now())
	if err := Write(path, p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "news.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}
