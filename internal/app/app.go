// Package app wires the refresh pipeline: registry → fetch → classify
// → canonicalize/dedupe → enrich → render, one synchronous pass.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vcarciu/vesti-bune/internal/canonical"
	"github.com/vcarciu/vesti-bune/internal/classify"
	"github.com/vcarciu/vesti-bune/internal/config"
	"github.com/vcarciu/vesti-bune/internal/dedupe"
	"github.com/vcarciu/vesti-bune/internal/feed"
	"github.com/vcarciu/vesti-bune/internal/gemini"
	"github.com/vcarciu/vesti-bune/internal/joke"
	"github.com/vcarciu/vesti-bune/internal/logger"
	"github.com/vcarciu/vesti-bune/internal/metrics"
	"github.com/vcarciu/vesti-bune/internal/news"
	"github.com/vcarciu/vesti-bune/internal/ratelimit"
	"github.com/vcarciu/vesti-bune/internal/render"
	"github.com/vcarciu/vesti-bune/internal/retry"
	"github.com/vcarciu/vesti-bune/internal/scraper"
	"github.com/vcarciu/vesti-bune/internal/sources"
	"github.com/vcarciu/vesti-bune/internal/translate"
)

// Run executes one refresh pass and writes the page payload.
func Run(ctx context.Context) error {
	start := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg, err := sources.Load(cfg.SourcesPath)
	if err != nil {
		return fmt.Errorf("load source registry: %w", err)
	}
	rules := classify.NewRuleset(reg.Filters)

	retryCfg := retry.Config{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	}
	fetcher := feed.NewFetcher(cfg.UserAgent, cfg.RequestTimeout, retryCfg, cfg.MaxEntriesPerFeed)
	scr := scraper.New(cfg.UserAgent, cfg.RequestTimeout)

	history, err := openHistory(cfg)
	if err != nil {
		return fmt.Errorf("open dedupe history: %w", err)
	}
	defer func() {
		if err := history.Close(); err != nil {
			logger.Error("save dedupe history", "error", err)
		}
	}()

	limiter := ratelimit.NewTranslationLimiter(cfg.MaxTranslations)
	var geminiClient *gemini.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Warn("gemini unavailable, continuing without it", "error", err)
		} else {
			defer geminiClient.Close()
		}
	}
	translator := translate.New(cfg.DeepLAPIKey, cfg.DeepLAPIURL, cfg.UserAgent, cfg.RequestTimeout, geminiClient, limiter, retryCfg)

	index := dedupe.NewIndex()
	sectionsOut := make(map[string][]news.Article)
	var feedSections []string

	for _, section := range reg.Sections {
		srcs := reg.RSSSources[section.ID]
		if len(srcs) == 0 {
			continue
		}
		feedSections = append(feedSections, section.ID)

		items := fetcher.FetchSection(ctx, section.ID, srcs)
		articles := buildSection(reg, rules, index, history, section.ID, items, cfg.NewsMaxAge)

		news.SortNewestFirst(articles)
		if max := reg.MaxItems(section.ID); len(articles) > max {
			articles = articles[:max]
		}
		sectionsOut[section.ID] = articles
	}

	enrichSummaries(ctx, scr, sectionsOut, feedSections, cfg)
	translateGlobal(ctx, translator, sectionsOut, feedSections)

	sectionsOut["photos"] = buildPhotos(ctx, scr, sectionsOut, feedSections, reg.Photos)
	sectionsOut["satire"] = buildSatire(ctx, fetcher, scr, index, reg.Satire)
	sectionsOut["joke"] = buildJoke(cfg.JokesPath)

	payload := render.Build(sectionsOut, feedSections, cfg.MaxFlatItems, time.Now())
	if err := render.Write(cfg.OutputPath, payload); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	// Only rendered articles enter the cross-run history; items cut by
	// the per-section cap may still surface on a later run.
	for _, sectionID := range feedSections {
		for _, a := range sectionsOut[sectionID] {
			key := dedupe.HashKey(a.Link)
			if err := history.Mark(key, a.Title, a.Link, a.Section, a.Source); err != nil {
				logger.Warn("mark article in history", "link", a.Link, "error", err)
			}
		}
	}

	metrics.Global.AddArticlesRendered(payload.Count)
	metrics.Global.RecordRunDuration(time.Since(start))
	metrics.Global.SetLastRun()
	limiter.LogStats()

	logger.Info("refresh complete",
		"output", cfg.OutputPath,
		"items", payload.Count,
		"sections", len(payload.Sections),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// openHistory picks the cross-run dedupe backend: Postgres when
// DATABASE_URL is set, a JSON file otherwise, none when persistence
// is disabled.
func openHistory(cfg *config.Config) (dedupe.History, error) {
	if !cfg.DedupePersist {
		logger.Info("cross-run dedupe disabled, run-only scope")
		return dedupe.NoopHistory{}, nil
	}

	if cfg.DedupeStateDSN != "" {
		ph, err := dedupe.NewPostgresHistory(cfg.DedupeStateDSN, cfg.DedupeTTLHours)
		if err != nil {
			return nil, err
		}
		logger.Info("dedupe history backend", "backend", "postgres", "ttl_hours", cfg.DedupeTTLHours)
		return ph, nil
	}

	path := filepath.Join(cfg.DedupeStateDir, "seen_articles.json")
	fh := dedupe.NewFileHistory(path, cfg.DedupeTTLHours)
	if err := fh.Load(); err != nil {
		return nil, err
	}
	logger.Info("dedupe history backend", "backend", "file", "path", path, "entries", fh.Len())
	return fh, nil
}

// buildSection turns fetched items into classified, deduplicated
// articles. Order is not final here; the caller sorts and trims.
func buildSection(reg *sources.Registry, rules *classify.Ruleset, index *dedupe.Index, history dedupe.History, sectionID string, items []feed.Item, maxAge time.Duration) []news.Article {
	now := time.Now()
	threshold := reg.Threshold(sectionID)
	var out []news.Article

	for _, item := range items {
		metrics.Global.IncrementArticlesFetched()

		if item.Published.Before(now.Add(-maxAge)) {
			continue
		}
		// Feeds occasionally carry bogus future dates; an hour of
		// clock skew is tolerated.
		if item.Published.After(now.Add(time.Hour)) {
			continue
		}

		canon, err := canonical.Canonicalize(item.Link)
		if err != nil {
			logger.Warn("dropping article with malformed url", "url", item.Link, "error", err)
			metrics.Global.IncrementMalformedURLs()
			continue
		}

		score, allowed := rules.Score(sectionID, item.Title, item.Summary)
		if !allowed {
			metrics.Global.IncrementArticlesVetoed()
			logger.Debug("vetoed", "section", sectionID, "title", item.Title)
			continue
		}
		if score < threshold {
			metrics.Global.IncrementBelowThreshold()
			continue
		}

		if !index.Add(canon, canonical.TitleFingerprint(item.Title)) {
			metrics.Global.IncrementDuplicatesFiltered()
			logger.Debug("duplicate within run", "title", item.Title)
			continue
		}
		if history.Seen(dedupe.HashKey(canon)) {
			metrics.Global.IncrementDuplicatesFiltered()
			logger.Debug("already rendered in a previous run", "title", item.Title)
			continue
		}

		kind := news.KindGlobal
		if strings.EqualFold(item.Source.Locale, "ro") {
			kind = news.KindRO
		}

		out = append(out, news.Article{
			Section:      sectionID,
			Kind:         kind,
			Source:       item.Source.Name,
			Title:        item.Title,
			Summary:      item.Summary,
			Link:         canon,
			PublishedUTC: item.Published,
			Score:        score,
		})
	}
	return out
}

// enrichSummaries scrapes page text for articles whose feed carried no
// description, up to the configured cap.
func enrichSummaries(ctx context.Context, scr *scraper.Scraper, sections map[string][]news.Article, feedSections []string, cfg *config.Config) {
	var urls []string
	for _, sectionID := range feedSections {
		for _, a := range sections[sectionID] {
			if a.Summary == "" && len(urls) < cfg.ScrapeMaxArticles {
				urls = append(urls, a.Link)
			}
		}
	}
	if len(urls) == 0 {
		return
	}

	summaries := scr.EnrichSummaries(ctx, urls, cfg.ScrapeConcurrency)
	filled := 0
	for _, sectionID := range feedSections {
		arts := sections[sectionID]
		for i := range arts {
			if arts[i].Summary == "" {
				if s, ok := summaries[arts[i].Link]; ok {
					arts[i].Summary = s
					filled++
				}
			}
		}
	}
	logger.Info("summaries enriched", "attempted", len(urls), "filled", filled)
}

// translateGlobal fills Romanian title/summary for non-RO articles.
func translateGlobal(ctx context.Context, translator *translate.Translator, sections map[string][]news.Article, feedSections []string) {
	if !translator.Available() {
		logger.Debug("no translation provider configured, skipping")
		return
	}

	for _, sectionID := range feedSections {
		arts := sections[sectionID]
		for i := range arts {
			if arts[i].Kind != news.KindGlobal {
				continue
			}
			roTitle, roSummary := translator.ToRomanian(ctx, arts[i].Title, arts[i].Summary)
			if roTitle != arts[i].Title {
				arts[i].TitleRO = roTitle
			}
			if roSummary != arts[i].Summary {
				arts[i].SummaryRO = roSummary
			}
		}
	}
}

// buildPhotos picks the freshest articles that expose a preview image.
func buildPhotos(ctx context.Context, scr *scraper.Scraper, sections map[string][]news.Article, feedSections []string, cfg sources.Photos) []news.Article {
	photos := []news.Article{}
	if !cfg.Enabled {
		return photos
	}
	max := cfg.MaxItems
	if max <= 0 {
		max = 6
	}

	var candidates []news.Article
	for _, sectionID := range feedSections {
		candidates = append(candidates, sections[sectionID]...)
	}
	news.SortNewestFirst(candidates)

	for _, a := range candidates {
		if len(photos) >= max {
			break
		}
		img, err := scr.ExtractImage(ctx, a.Link)
		if err != nil {
			logger.Debug("no preview image", "link", a.Link, "error", err)
			continue
		}
		p := a
		p.Section = "photos"
		p.Image = img
		photos = append(photos, p)
	}

	logger.Info("photos section built", "items", len(photos))
	return photos
}

// buildSatire pulls the satire block: from its RSS feed when one
// exists, from homepage headlines otherwise. Satire headlines are not
// scored, but still go through canonicalization and the run-scoped
// dedupe index.
func buildSatire(ctx context.Context, fetcher *feed.Fetcher, scr *scraper.Scraper, index *dedupe.Index, cfg sources.Satire) []news.Article {
	satire := []news.Article{}
	if !cfg.Enabled {
		return satire
	}
	max := cfg.MaxItems
	if max <= 0 {
		max = 5
	}

	if cfg.FeedURL != "" {
		src := sources.Source{Name: cfg.Name, URL: cfg.FeedURL, Locale: "ro"}
		items := fetcher.FetchSection(ctx, "satire", []sources.Source{src})
		for _, item := range items {
			if len(satire) >= max {
				break
			}
			canon, err := canonical.Canonicalize(item.Link)
			if err != nil {
				metrics.Global.IncrementMalformedURLs()
				continue
			}
			if !index.Add(canon, canonical.TitleFingerprint(item.Title)) {
				metrics.Global.IncrementDuplicatesFiltered()
				continue
			}
			satire = append(satire, news.Article{
				Section:      "satire",
				Kind:         news.KindRO,
				Source:       cfg.Name,
				Title:        item.Title,
				Summary:      item.Summary,
				Link:         canon,
				PublishedUTC: item.Published,
			})
		}
		return satire
	}

	headlines, err := scr.SatireHeadlines(ctx, cfg.Homepage, max)
	if err != nil {
		logger.Warn("satire scrape failed", "homepage", cfg.Homepage, "error", err)
		return satire
	}
	now := time.Now().UTC().Truncate(time.Second)
	for _, h := range headlines {
		canon, err := canonical.Canonicalize(h.Link)
		if err != nil {
			metrics.Global.IncrementMalformedURLs()
			continue
		}
		if !index.Add(canon, canonical.TitleFingerprint(h.Title)) {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		satire = append(satire, news.Article{
			Section:      "satire",
			Kind:         news.KindRO,
			Source:       cfg.Name,
			Title:        h.Title,
			Link:         canon,
			PublishedUTC: now,
		})
	}
	return satire
}

// buildJoke returns the joke-of-the-day block, empty when no jokes
// file is present.
func buildJoke(path string) []news.Article {
	j, err := joke.Daily(path, time.Now())
	if err != nil {
		logger.Debug("no joke today", "error", err)
		return []news.Article{}
	}
	return []news.Article{{
		Section:      "joke",
		Kind:         news.KindRO,
		Source:       "jokes_ro",
		Title:        j,
		PublishedUTC: time.Now().UTC().Truncate(24 * time.Hour),
	}}
}
