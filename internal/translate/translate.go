// Package translate produces Romanian titles and summaries for
// articles coming from non-Romanian sources. DeepL is tried first,
// Gemini second; when both fail the original text is kept, so
// translation is never a reason to drop an article.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vcarciu/vesti-bune/internal/cache"
	"github.com/vcarciu/vesti-bune/internal/gemini"
	"github.com/vcarciu/vesti-bune/internal/logger"
	"github.com/vcarciu/vesti-bune/internal/metrics"
	"github.com/vcarciu/vesti-bune/internal/ratelimit"
	"github.com/vcarciu/vesti-bune/internal/retry"
)

// deepLEndpoints are tried in order when no explicit endpoint is
// configured; free-tier keys only work on the -free host.
var deepLEndpoints = []string{
	"https://api-free.deepl.com/v2/translate",
	"https://api.deepl.com/v2/translate",
}

type Translator struct {
	deeplKey  string
	deeplURL  string
	userAgent string
	client    *http.Client
	gemini    *gemini.Client
	memo      *cache.Cache
	limiter   *ratelimit.TranslationLimiter
	retryCfg  retry.Config
	memoTTL   time.Duration
}

// New builds a Translator. geminiClient may be nil (DeepL only);
// likewise deeplKey may be empty (Gemini only). With neither,
// Available reports false and the pipeline skips translation.
func New(deeplKey, deeplURL, userAgent string, timeout time.Duration, geminiClient *gemini.Client, limiter *ratelimit.TranslationLimiter, retryCfg retry.Config) *Translator {
	return &Translator{
		deeplKey:  deeplKey,
		deeplURL:  deeplURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		gemini:    geminiClient,
		memo:      cache.New(),
		limiter:   limiter,
		retryCfg:  retryCfg,
		memoTTL:   48 * time.Hour,
	}
}

func (t *Translator) Available() bool {
	return t.deeplKey != "" || t.gemini != nil
}

// ToRomanian translates a title and summary, best-effort. The inputs
// are returned unchanged on any failure.
func (t *Translator) ToRomanian(ctx context.Context, title, summary string) (string, string) {
	if !t.Available() {
		return title, summary
	}

	roTitle := t.translateText(ctx, title)
	roSummary := summary
	if summary != "" {
		roSummary = t.translateText(ctx, summary)
	}

	// Gemini handles both fields in one call; use it when DeepL left
	// any field untouched (failure, or budget exhausted mid-article)
	// and fill only the gaps, keeping whatever DeepL did translate.
	titleGap, summaryGap := geminiGaps(title, roTitle, summary, roSummary)
	if (titleGap || summaryGap) && t.gemini != nil && t.limiter.Allow() {
		if err := t.limiter.UseGemini(); err == nil {
			tr, err := t.gemini.TranslateToRomanian(ctx, title, summary)
			if err != nil {
				logger.Warn("gemini translation failed", "error", err)
				metrics.Global.IncrementTranslationErrors()
				return roTitle, roSummary
			}
			metrics.Global.IncrementTranslations()
			if titleGap {
				roTitle = SanitizeAIText(tr.Title)
			}
			if summaryGap && tr.Summary != "" {
				roSummary = SanitizeAIText(tr.Summary)
			}
		}
	}

	return roTitle, roSummary
}

// geminiGaps reports which fields still need a fallback translation.
// An empty summary is not a gap; there is nothing to translate.
func geminiGaps(title, roTitle, summary, roSummary string) (titleGap, summaryGap bool) {
	return roTitle == title, summary != "" && roSummary == summary
}

// translateText runs one string through DeepL with memoization.
// Returns the input unchanged on failure.
func (t *Translator) translateText(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || t.deeplKey == "" {
		return text
	}

	key := cache.Key(text, "ro")
	if cached, ok := t.memo.Get(key); ok {
		t.limiter.RecordCacheHit()
		return cached
	}

	if !t.limiter.Allow() {
		return text
	}
	if err := t.limiter.UseDeepL(); err != nil {
		return text
	}

	out, err := t.deepL(ctx, text)
	if err != nil {
		logger.Warn("deepl translation failed", "error", err)
		metrics.Global.IncrementTranslationErrors()
		return text
	}

	metrics.Global.IncrementTranslations()
	out = SanitizeAIText(out)
	t.memo.Set(key, out, t.memoTTL)
	return out
}

func (t *Translator) deepL(ctx context.Context, text string) (string, error) {
	// Keep requests inside DeepL's per-call size comfort zone.
	if len(text) > 4000 {
		text = text[:4000]
	}

	endpoints := deepLEndpoints
	if t.deeplURL != "" {
		endpoints = []string{t.deeplURL}
	}

	var lastErr error
	for _, endpoint := range endpoints {
		out, err := t.deepLOnce(ctx, endpoint, text)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (t *Translator) deepLOnce(ctx context.Context, endpoint, text string) (string, error) {
	form := url.Values{}
	form.Set("auth_key", t.deeplKey)
	form.Set("text", text)
	form.Set("target_lang", "RO")

	var result string
	err := retry.Do(ctx, t.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", t.userAgent)

		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("deepl request: %w", err)
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				logger.Warn("close response body", "error", closeErr)
			}
		}()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("deepl status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read deepl response: %w", err)
		}

		var parsed struct {
			Translations []struct {
				Text string `json:"text"`
			} `json:"translations"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("parse deepl response: %w", err)
		}
		if len(parsed.Translations) == 0 || strings.TrimSpace(parsed.Translations[0].Text) == "" {
			return fmt.Errorf("empty deepl translation")
		}

		result = strings.TrimSpace(parsed.Translations[0].Text)
		return nil
	})
	return result, err
}
