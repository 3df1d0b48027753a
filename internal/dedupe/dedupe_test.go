package dedupe

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIndexRejectsRepeatedCanonicalURL(t *testing.T) {
	ix := NewIndex()

	if !ix.Add("https://example.ro/story", "titlu unu") {
		t.Fatal("first add must succeed")
	}
	if ix.Add("https://example.ro/story", "titlu complet diferit") {
		t.Error("second add with same canonical URL must be rejected")
	}
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}
}

func TestIndexRejectsRepeatedTitleFingerprint(t *testing.T) {
	ix := NewIndex()

	if !ix.Add("https://a.example.ro/story", "acelasi titlu") {
		t.Fatal("first add must succeed")
	}
	if ix.Add("https://b.example.ro/alt-link", "acelasi titlu") {
		t.Error("same title fingerprint from another source must be rejected")
	}
}

func TestIndexIgnoresEmptyFingerprint(t *testing.T) {
	ix := NewIndex()

	if !ix.Add("https://a.example.ro/1", "") {
		t.Fatal("first add must succeed")
	}
	if !ix.Add("https://a.example.ro/2", "") {
		t.Error("empty fingerprints must not collide with each other")
	}
}

func TestHashKeyIsStable(t *testing.T) {
	a := HashKey("https://example.ro/story")
	b := HashKey("https://example.ro/story")
	if a != b {
		t.Errorf("HashKey not stable: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Errorf("HashKey length = %d, want 16", len(a))
	}
	if a == HashKey("https://example.ro/other") {
		t.Error("different URLs must not share a key")
	}
}

func TestFileHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_articles.json")

	fh := NewFileHistory(path, 48)
	if err := fh.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}

	key := HashKey("https://example.ro/story")
	if fh.Seen(key) {
		t.Fatal("fresh history must not contain the key")
	}
	if err := fh.Mark(key, "Titlu", "https://example.ro/story", "romania", "Digi24"); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reloaded := NewFileHistory(path, 48)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Seen(key) {
		t.Error("key must survive a save/load cycle")
	}
	if reloaded.Seen(HashKey("https://example.ro/other")) {
		t.Error("unknown key reported as seen")
	}
}

func TestFileHistoryExpiresOldEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_articles.json")

	fh := NewFileHistory(path, 1)
	key := HashKey("https://example.ro/vechi")
	fh.items[key] = SeenArticle{
		Key:    key,
		Title:  "Vechi",
		Link:   "https://example.ro/vechi",
		SeenAt: time.Now().Add(-2 * time.Hour),
	}

	if fh.Seen(key) {
		t.Error("expired entry reported as seen")
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reloaded := NewFileHistory(path, 1)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 0 {
		t.Errorf("expired entry survived save, Len = %d", reloaded.Len())
	}
}

func TestFileHistoryLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_articles.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	fh := NewFileHistory(path, 48)
	if err := fh.Load(); err != nil {
		t.Errorf("Load on empty file: %v", err)
	}
}

func TestNoopHistoryNeverSees(t *testing.T) {
	var h History = NoopHistory{}

	if err := h.Mark("k", "t", "l", "s", "src"); err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if h.Seen("k") {
		t.Error("noop history must never report seen")
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
