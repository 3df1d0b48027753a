package dedupe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileHistory persists seen articles in a JSON file. Load at start,
// Save (via Close) at exit; expired entries are dropped on both ends.
type FileHistory struct {
	filePath string
	ttl      time.Duration
	items    map[string]SeenArticle
}

func NewFileHistory(filePath string, ttlHours int) *FileHistory {
	return &FileHistory{
		filePath: filePath,
		ttl:      time.Duration(ttlHours) * time.Hour,
		items:    make(map[string]SeenArticle),
	}
}

// Load reads existing history from disk. A missing file is a normal
// first run, not an error.
func (fh *FileHistory) Load() error {
	data, err := os.ReadFile(fh.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SeenArticle
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unmarshal history: %w", err)
	}

	cutoff := time.Now().Add(-fh.ttl)
	for _, item := range items {
		if item.SeenAt.After(cutoff) {
			fh.items[item.Key] = item
		}
	}
	return nil
}

func (fh *FileHistory) Seen(key string) bool {
	item, exists := fh.items[key]
	if !exists {
		return false
	}
	return item.SeenAt.After(time.Now().Add(-fh.ttl))
}

func (fh *FileHistory) Mark(key, title, link, section, source string) error {
	fh.items[key] = SeenArticle{
		Key:     key,
		Title:   title,
		Link:    link,
		Section: section,
		Source:  source,
		SeenAt:  time.Now(),
	}
	return nil
}

// Close drops expired entries and writes the history back to disk.
func (fh *FileHistory) Close() error {
	cutoff := time.Now().Add(-fh.ttl)
	items := make([]SeenArticle, 0, len(fh.items))
	for _, item := range fh.items {
		if item.SeenAt.After(cutoff) {
			items = append(items, item)
		}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if dir := filepath.Dir(fh.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(fh.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// Len reports live (unexpired) entries, for logging.
func (fh *FileHistory) Len() int {
	n := 0
	cutoff := time.Now().Add(-fh.ttl)
	for _, item := range fh.items {
		if item.SeenAt.After(cutoff) {
			n++
		}
	}
	return n
}
