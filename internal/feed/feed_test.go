package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vcarciu/vesti-bune/internal/retry"
	"github.com/vcarciu/vesti-bune/internal/sources"
)

func testFetcher() *Fetcher {
	return NewFetcher("test-agent/1.0", 5*time.Second, retry.Config{MaxAttempts: 1}, 50)
}

// One broken source must never abort the section: items from the
// healthy sources still come back.
func TestFetchSectionSurvivesBrokenSources(t *testing.T) {
	const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Vești bune</title>
    <item>
      <title>Parc nou inaugurat</title>
      <link>https://a.ro/parc</link>
      <description>Un parc nou</description>
    </item>
  </channel>
</rss>`

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	}))
	defer healthy.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer failing.Close()

	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer garbage.Close()

	f := testFetcher()
	srcs := []sources.Source{
		{Name: "Failing", URL: failing.URL, Locale: "ro"},
		{Name: "Garbage", URL: garbage.URL, Locale: "ro"},
		{Name: "Healthy", URL: healthy.URL, Locale: "ro"},
	}

	items := f.FetchSection(context.Background(), "romania", srcs)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 from the healthy source", len(items))
	}
	if items[0].Title != "Parc nou inaugurat" || items[0].Source.Name != "Healthy" {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestFetchSectionCapsEntriesPerFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>`)
		for i := 0; i < 10; i++ {
			fmt.Fprintf(w, `<item><title>Titlu %d</title><link>https://a.ro/%d</link></item>`, i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	}))
	defer srv.Close()

	f := NewFetcher("test-agent/1.0", 5*time.Second, retry.Config{MaxAttempts: 1}, 3)
	items := f.FetchSection(context.Background(), "romania", []sources.Source{
		{Name: "Big", URL: srv.URL, Locale: "ro"},
	})
	if len(items) != 3 {
		t.Errorf("items = %d, want the per-feed cap of 3", len(items))
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct{ in, want string }{
		{"<p>Vești <b>bune</b> azi</p>", "Vești bune azi"},
		{"fără markup", "fără markup"},
		{"", ""},
		{"<div>\n  multe\n  spații\n</div>", "multe spații"},
		{"<img src='x'>doar text", "doar text"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertDropsEntriesWithoutTitleOrLink(t *testing.T) {
	f := testFetcher()
	src := sources.Source{Name: "Digi24", Locale: "ro"}

	if _, keep := f.convert(&gofeed.Item{Title: "", Link: "https://a.ro/1"}, "romania", src); keep {
		t.Error("entry without title must be dropped")
	}
	if _, keep := f.convert(&gofeed.Item{Title: "Titlu", Link: "  "}, "romania", src); keep {
		t.Error("entry without link must be dropped")
	}
}

func TestConvertFillsFields(t *testing.T) {
	f := testFetcher()
	src := sources.Source{Name: "Digi24", URL: "https://www.digi24.ro/rss", Locale: "ro"}
	published := time.Date(2026, 8, 22, 9, 30, 0, 0, time.FixedZone("EEST", 3*3600))

	item, keep := f.convert(&gofeed.Item{
		Title:           "  Parc nou inaugurat  ",
		Link:            "https://www.digi24.ro/stiri/parc?utm_source=rss",
		Description:     "<p>Un parc <i>nou</i></p>",
		PublishedParsed: &published,
	}, "romania", src)

	if !keep {
		t.Fatal("valid entry dropped")
	}
	if item.Title != "Parc nou inaugurat" {
		t.Errorf("Title = %q", item.Title)
	}
	if item.Summary != "Un parc nou" {
		t.Errorf("Summary = %q", item.Summary)
	}
	if item.SectionID != "romania" || item.Source.Name != "Digi24" {
		t.Errorf("source metadata lost: %+v", item)
	}
	if !item.Published.Equal(published.UTC().Truncate(time.Second)) {
		t.Errorf("Published = %v, want %v in UTC", item.Published, published)
	}
}

func TestConvertFallsBackToContentAndUpdated(t *testing.T) {
	f := testFetcher()
	src := sources.Source{Name: "Phys.org", Locale: "en"}
	updated := time.Date(2026, 8, 22, 11, 0, 0, 0, time.UTC)

	item, keep := f.convert(&gofeed.Item{
		Title:         "Discovery announced",
		Link:          "https://phys.org/news/1",
		Content:       "<p>Full body text</p>",
		UpdatedParsed: &updated,
	}, "science", src)

	if !keep {
		t.Fatal("valid entry dropped")
	}
	if item.Summary != "Full body text" {
		t.Errorf("Summary = %q, want content fallback", item.Summary)
	}
	if !item.Published.Equal(updated) {
		t.Errorf("Published = %v, want updated time", item.Published)
	}
}

func TestConvertDefaultsPublishedToNow(t *testing.T) {
	f := testFetcher()
	before := time.Now().UTC().Add(-time.Minute)

	item, keep := f.convert(&gofeed.Item{
		Title: "Fără dată",
		Link:  "https://a.ro/1",
	}, "romania", sources.Source{Locale: "ro"})

	if !keep {
		t.Fatal("valid entry dropped")
	}
	if item.Published.Before(before) || item.Published.After(time.Now().UTC().Add(time.Minute)) {
		t.Errorf("Published = %v, want approximately now", item.Published)
	}
}
