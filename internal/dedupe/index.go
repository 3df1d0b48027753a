// Package dedupe keeps repeated stories off the page. A run-scoped
// Index guarantees at most one article per canonical URL within a
// rendering pass; an optional History carries seen keys across runs
// with an explicit load-at-start / save-at-exit lifecycle.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
)

// Index is the run-scoped duplicate set. Not safe for concurrent use;
// the pipeline is a single synchronous pass.
type Index struct {
	urls   map[string]struct{}
	titles map[string]struct{}
}

func NewIndex() *Index {
	return &Index{
		urls:   make(map[string]struct{}),
		titles: make(map[string]struct{}),
	}
}

// Add records an article and reports whether it was new. titleFP may
// be empty, in which case only the canonical URL is considered.
func (ix *Index) Add(canonURL, titleFP string) bool {
	if _, dup := ix.urls[canonURL]; dup {
		return false
	}
	if titleFP != "" {
		if _, dup := ix.titles[titleFP]; dup {
			return false
		}
		ix.titles[titleFP] = struct{}{}
	}
	ix.urls[canonURL] = struct{}{}
	return true
}

// Len returns the number of distinct canonical URLs seen this run.
func (ix *Index) Len() int {
	return len(ix.urls)
}

// HashKey derives the stable history key for a canonical URL.
func HashKey(canonURL string) string {
	h := sha256.Sum256([]byte(canonURL))
	return hex.EncodeToString(h[:])[:16]
}
