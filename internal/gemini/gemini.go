// Package gemini translates article headlines and summaries into
// Romanian. It is the fallback provider behind DeepL.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Client struct {
	client *genai.Client
	model  string
}

// Translation is the Romanian rendering of one article.
type Translation struct {
	Title   string
	Summary string
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: "gemini-1.5-flash"}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// TranslateToRomanian renders the title and summary in natural
// Romanian, keeping proper names untranslated.
func (c *Client) TranslateToRomanian(ctx context.Context, title, summary string) (*Translation, error) {
	model := c.client.GenerativeModel(c.model)

	summary = strings.TrimSpace(strings.ReplaceAll(summary, "\r", ""))
	summary = strings.Join(strings.Fields(summary), " ")
	const maxChars = 4000
	if utf8.RuneCountInString(summary) > maxChars {
		runes := []rune(summary)
		trimmed := string(runes[:maxChars])
		if idx := strings.LastIndex(trimmed, ". "); idx > 800 {
			trimmed = trimmed[:idx+1]
		}
		summary = trimmed
	}

	prompt := fmt.Sprintf(`Tradu în română titlul și rezumatul de mai jos.

TITLU ORIGINAL: %s
REZUMAT ORIGINAL: %s

CERINȚE:
- Traducere naturală, nu cuvânt cu cuvânt.
- Nu traduce numele proprii de persoane, branduri sau organizații.
- Fără introduceri de tipul „Știrea despre...".
- Fără note sau explicații despre traducere.
- Răspunde strict în formatul de mai jos.

TITLU: <titlul tradus>
REZUMAT: <rezumatul tradus>
`, title, summary)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return parseResponse(raw)
}

var (
	titleLabelRe   = regexp.MustCompile(`(?i)^TITLU\s*: ?`)
	summaryLabelRe = regexp.MustCompile(`(?i)^REZUMAT\s*: ?`)
)

func parseResponse(response string) (*Translation, error) {
	var titleB, summaryB strings.Builder
	current := ""

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case titleLabelRe.MatchString(line):
			current = "title"
			line = titleLabelRe.ReplaceAllString(line, "")
		case summaryLabelRe.MatchString(line):
			current = "summary"
			line = summaryLabelRe.ReplaceAllString(line, "")
		}
		if line == "" {
			continue
		}

		switch current {
		case "title":
			if titleB.Len() > 0 {
				titleB.WriteString(" ")
			}
			titleB.WriteString(line)
		case "summary":
			if summaryB.Len() > 0 {
				summaryB.WriteString(" ")
			}
			summaryB.WriteString(line)
		}
	}

	title := strings.TrimSpace(titleB.String())
	summary := strings.TrimSpace(summaryB.String())

	// Model sometimes answers with the summary only; a bare title is
	// still usable, a bare summary is not.
	if title == "" {
		return nil, fmt.Errorf("parse gemini response: missing TITLU block")
	}

	return &Translation{Title: title, Summary: summary}, nil
}
