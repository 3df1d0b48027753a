// Package news holds the article model shared by the pipeline stages.
package news

import (
	"sort"
	"time"
)

// Article is one story as it appears in the rendered payload. Identity
// is the canonical URL in Link; articles are immutable once built,
// apart from the enrichment fields (Summary, TitleRO, SummaryRO,
// Image) filled in before rendering.
type Article struct {
	Section      string    `json:"section"`
	Kind         string    `json:"kind"` // "ro" or "global"
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Link         string    `json:"link"`
	PublishedUTC time.Time `json:"published_utc"`
	Score        int       `json:"score"`

	TitleRO   string `json:"title_ro,omitempty"`
	SummaryRO string `json:"summary_ro,omitempty"`
	Image     string `json:"image,omitempty"`
}

// KindRO marks articles from Romanian-locale sources; everything else
// is KindGlobal and gets a Romanian translation when providers are
// configured.
const (
	KindRO     = "ro"
	KindGlobal = "global"
)

// SortNewestFirst orders articles by publication time, newest first.
// Ties break on canonical URL so output stays deterministic.
func SortNewestFirst(articles []Article) {
	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].PublishedUTC.Equal(articles[j].PublishedUTC) {
			return articles[i].PublishedUTC.After(articles[j].PublishedUTC)
		}
		return articles[i].Link < articles[j].Link
	})
}
