// Package ratelimit caps how many paid translation calls a run may
// make. DeepL free tier and Gemini both have daily quotas; the budget
// keeps one noisy news day from burning a month of quota.
package ratelimit

import (
	"fmt"
	"sync"

	"github.com/vcarciu/vesti-bune/internal/logger"
)

type TranslationLimiter struct {
	mu          sync.Mutex
	deeplCount  int
	geminiCount int
	totalCount  int
	maxTotal    int
	cacheHits   int
}

// NewTranslationLimiter creates a limiter with a total per-run budget
// (0 = unlimited).
func NewTranslationLimiter(maxTotal int) *TranslationLimiter {
	return &TranslationLimiter{maxTotal: maxTotal}
}

// Allow reports whether another translation call fits the budget.
func (rl *TranslationLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.maxTotal <= 0 || rl.totalCount < rl.maxTotal
}

// UseDeepL consumes one unit of budget for a DeepL call.
func (rl *TranslationLimiter) UseDeepL() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("translation budget exhausted (%d/%d)", rl.totalCount, rl.maxTotal)
	}
	rl.deeplCount++
	rl.totalCount++
	return nil
}

// UseGemini consumes one unit of budget for a Gemini call.
func (rl *TranslationLimiter) UseGemini() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("translation budget exhausted (%d/%d)", rl.totalCount, rl.maxTotal)
	}
	rl.geminiCount++
	rl.totalCount++
	return nil
}

// RecordCacheHit notes a translation served from cache (free).
func (rl *TranslationLimiter) RecordCacheHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cacheHits++
}

// LogStats writes usage counters at the end of a run.
func (rl *TranslationLimiter) LogStats() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	logger.Info("translation usage",
		"deepl", rl.deeplCount,
		"gemini", rl.geminiCount,
		"total", rl.totalCount,
		"budget", rl.maxTotal,
		"cache_hits", rl.cacheHits,
	)
}
