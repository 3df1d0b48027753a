package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched    int64
	ArticlesVetoed     int64
	BelowThreshold     int64
	DuplicatesFiltered int64
	MalformedURLs      int64
	FeedErrors         int64
	Translations       int64
	TranslationErrors  int64
	ArticlesRendered   int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementArticlesFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched++
}

func (m *Metrics) IncrementArticlesVetoed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesVetoed++
}

func (m *Metrics) IncrementBelowThreshold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BelowThreshold++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementMalformedURLs() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MalformedURLs++
}

func (m *Metrics) IncrementFeedErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedErrors++
}

func (m *Metrics) IncrementTranslations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Translations++
}

func (m *Metrics) IncrementTranslationErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationErrors++
}

func (m *Metrics) AddArticlesRendered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesRendered += int64(n)
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":        m.ArticlesFetched,
		"articles_vetoed":         m.ArticlesVetoed,
		"below_threshold":         m.BelowThreshold,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"malformed_urls":          m.MalformedURLs,
		"feed_errors":             m.FeedErrors,
		"translations":            m.Translations,
		"translation_errors":      m.TranslationErrors,
		"articles_rendered":       m.ArticlesRendered,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
