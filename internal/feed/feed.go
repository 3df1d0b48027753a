// Package feed pulls candidate articles from the registry's RSS/Atom
// sources. One broken source never aborts the run: fetch errors are
// logged and the remaining sources are still aggregated.
package feed

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/vcarciu/vesti-bune/internal/logger"
	"github.com/vcarciu/vesti-bune/internal/metrics"
	"github.com/vcarciu/vesti-bune/internal/retry"
	"github.com/vcarciu/vesti-bune/internal/sources"
)

// Item is one candidate article as fetched, before classification.
type Item struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
	SectionID string
	Source    sources.Source
}

// Fetcher downloads and parses feeds with a shared gofeed parser.
type Fetcher struct {
	parser     *gofeed.Parser
	timeout    time.Duration
	retryCfg   retry.Config
	maxEntries int
}

func NewFetcher(userAgent string, timeout time.Duration, retryCfg retry.Config, maxEntries int) *Fetcher {
	p := gofeed.NewParser()
	p.UserAgent = userAgent
	return &Fetcher{
		parser:     p,
		timeout:    timeout,
		retryCfg:   retryCfg,
		maxEntries: maxEntries,
	}
}

// FetchSection fetches every source of one section, best-effort.
func (f *Fetcher) FetchSection(ctx context.Context, sectionID string, srcs []sources.Source) []Item {
	var items []Item
	ok := 0

	for _, src := range srcs {
		parsed, err := f.fetchOne(ctx, src.URL)
		if err != nil {
			logger.Warn("feed fetch failed", "section", sectionID, "source", src.Name, "url", src.URL, "error", err)
			metrics.Global.IncrementFeedErrors()
			continue
		}
		ok++

		entries := parsed.Items
		if len(entries) > f.maxEntries {
			entries = entries[:f.maxEntries]
		}
		for _, e := range entries {
			item, keep := f.convert(e, sectionID, src)
			if !keep {
				continue
			}
			items = append(items, item)
		}
		logger.Debug("feed loaded", "source", src.Name, "entries", len(entries))
	}

	logger.Info("section fetched", "section", sectionID, "sources_ok", ok, "sources_total", len(srcs), "items", len(items))
	return items
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (*gofeed.Feed, error) {
	var parsed *gofeed.Feed
	err := retry.Do(ctx, f.retryCfg, func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		feed, err := f.parser.ParseURLWithContext(url, fetchCtx)
		if err != nil {
			return err
		}
		parsed = feed
		return nil
	})
	return parsed, err
}

// convert maps one gofeed entry onto an Item. Entries without a title
// or link carry nothing to render or dedupe on and are dropped.
func (f *Fetcher) convert(e *gofeed.Item, sectionID string, src sources.Source) (Item, bool) {
	title := strings.TrimSpace(e.Title)
	link := strings.TrimSpace(e.Link)
	if title == "" || link == "" {
		return Item{}, false
	}

	summary := StripHTML(e.Description)
	if summary == "" {
		summary = StripHTML(e.Content)
	}

	published := time.Now().UTC()
	if e.PublishedParsed != nil {
		published = e.PublishedParsed.UTC()
	} else if e.UpdatedParsed != nil {
		published = e.UpdatedParsed.UTC()
	}

	return Item{
		Title:     title,
		Link:      link,
		Summary:   summary,
		Published: published.Truncate(time.Second),
		SectionID: sectionID,
		Source:    src,
	}, true
}

var (
	tagRe   = regexp.MustCompile(`<[^>]+>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// StripHTML flattens RSS summary markup to plain text. Crude but
// enough for feed descriptions.
func StripHTML(text string) string {
	if text == "" {
		return ""
	}
	text = tagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
