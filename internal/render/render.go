// Package render emits data/news.json, the frozen contract consumed
// by the static page. The page layout itself is out of scope; only
// this payload shape matters.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vcarciu/vesti-bune/internal/news"
)

// Payload is the top-level JSON document. Items is the flat
// newest-first list the current page reads; Sections is the grouped
// format newer page revisions use.
type Payload struct {
	GeneratedUTC string                    `json:"generated_utc"`
	Count        int                       `json:"count"`
	Items        []news.Article            `json:"items"`
	Sections     map[string][]news.Article `json:"sections"`
}

// Build assembles the payload. flattenOrder names the sections whose
// articles make up the flat list (the feed-driven ones; satire, photos
// and the joke stay in their own blocks), capped at maxFlat.
func Build(sections map[string][]news.Article, flattenOrder []string, maxFlat int, now time.Time) Payload {
	var flat []news.Article
	for _, sectionID := range flattenOrder {
		flat = append(flat, sections[sectionID]...)
	}
	news.SortNewestFirst(flat)
	if maxFlat > 0 && len(flat) > maxFlat {
		flat = flat[:maxFlat]
	}

	// Keep the sections key present even when empty; the page
	// distinguishes "no news" from "missing block".
	if sections == nil {
		sections = map[string][]news.Article{}
	}

	return Payload{
		GeneratedUTC: now.UTC().Truncate(time.Second).Format(time.RFC3339),
		Count:        len(flat),
		Items:        flat,
		Sections:     sections,
	}
}

// Write stores the payload atomically: temp file in the target
// directory, then rename, so the page never reads a half-written file.
func Write(path string, payload Payload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".news-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace output file: %w", err)
	}
	return nil
}
