package dedupe

import "time"

// SeenArticle is one history entry.
type SeenArticle struct {
	Key     string    `json:"key"`
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	Section string    `json:"section"`
	Source  string    `json:"source"`
	SeenAt  time.Time `json:"seen_at"`
}

// History is the cross-run duplicate store. Implementations are the
// JSON file backend and the Postgres backend; both window entries by
// a TTL so sources that recycle old stories eventually resurface.
type History interface {
	Seen(key string) bool
	Mark(key, title, link, section, source string) error
	Close() error
}

// NoopHistory disables cross-run deduplication (run-only scope).
type NoopHistory struct{}

func (NoopHistory) Seen(string) bool                { return false }
func (NoopHistory) Mark(_, _, _, _, _ string) error { return nil }
func (NoopHistory) Close() error                    { return nil }
