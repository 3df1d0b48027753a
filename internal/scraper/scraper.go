// Package scraper fills the gaps feeds leave: page text for entries
// with no usable summary, og:image URLs for the photo block, and
// headline scraping for the satire source that publishes no RSS.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vcarciu/vesti-bune/internal/logger"
)

type Scraper struct {
	client    *http.Client
	userAgent string
}

// Headline is a scraped satire headline.
type Headline struct {
	Title string
	Link  string
}

func New(userAgent string, timeout time.Duration) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

func (s *Scraper) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// summarySelectors are tried in order until one yields paragraphs.
var summarySelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	"p",
}

// ExtractSummary pulls the first paragraphs of an article page for
// entries whose feed carried no description.
func (s *Scraper) ExtractSummary(ctx context.Context, pageURL string) (string, error) {
	doc, err := s.fetchDoc(ctx, pageURL)
	if err != nil {
		return "", err
	}

	var paragraphs []string
	for _, selector := range summarySelectors {
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 40 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 2 {
			break
		}
	}
	if len(paragraphs) == 0 {
		return "", fmt.Errorf("no readable paragraphs at %s", pageURL)
	}

	summary := strings.Join(paragraphs, " ")
	summary = strings.Join(strings.Fields(summary), " ")
	if len(summary) > 600 {
		if idx := strings.LastIndex(summary[:600], ". "); idx > 200 {
			summary = summary[:idx+1]
		} else {
			summary = summary[:600] + "..."
		}
	}
	return summary, nil
}

// EnrichSummaries fetches page summaries for several URLs with a
// bounded worker pool; failed URLs are simply absent from the result.
func (s *Scraper) EnrichSummaries(ctx context.Context, urls []string, concurrency int) map[string]string {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(map[string]string, len(urls))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for _, u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(pageURL string) {
			defer wg.Done()
			defer func() { <-sem }()

			summary, err := s.ExtractSummary(ctx, pageURL)
			if err != nil {
				logger.Debug("summary extraction failed", "url", pageURL, "error", err)
				return
			}
			mu.Lock()
			results[pageURL] = summary
			mu.Unlock()
		}(u)
	}

	wg.Wait()
	return results
}

// ExtractImage returns the page's og:image (or twitter:image) URL.
func (s *Scraper) ExtractImage(ctx context.Context, pageURL string) (string, error) {
	doc, err := s.fetchDoc(ctx, pageURL)
	if err != nil {
		return "", err
	}

	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			content = strings.TrimSpace(content)
			if content != "" {
				return absoluteURL(pageURL, content), nil
			}
		}
	}
	return "", fmt.Errorf("no preview image at %s", pageURL)
}

// SatireHeadlines scrapes headline links from a satire homepage.
func (s *Scraper) SatireHeadlines(ctx context.Context, homepage string, max int) ([]Headline, error) {
	doc, err := s.fetchDoc(ctx, homepage)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var headlines []Headline

	doc.Find("h1 a, h2 a, h3 a, .entry-title a").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		title := strings.Join(strings.Fields(sel.Text()), " ")
		href, ok := sel.Attr("href")
		if !ok || len(title) < 15 {
			return true
		}
		link := absoluteURL(homepage, strings.TrimSpace(href))
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true
		headlines = append(headlines, Headline{Title: title, Link: link})
		return len(headlines) < max
	})

	if len(headlines) == 0 {
		return nil, fmt.Errorf("no headlines found at %s", homepage)
	}
	return headlines, nil
}

func absoluteURL(base, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(refURL).String()
}
