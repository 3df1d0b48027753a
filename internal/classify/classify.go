// Package classify decides whether an article belongs on a
// positive-news page. Rules are data-driven from the source registry:
// a hard-blacklist match (politics, war, legal cases, crime, economic
// statistics, ...) vetoes the article no matter how many positive
// keywords it carries; otherwise keywords shift a graded score that is
// checked against the section threshold.
package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/vcarciu/vesti-bune/internal/sources"
)

// sectionsWithBias get a small bump: their feeds skew dry and factual
// and would otherwise lose to lifestyle items on raw keyword counts.
var sectionsWithBias = map[string]bool{
	"medical":     true,
	"science":     true,
	"environment": true,
}

type keyword struct {
	text     string
	isPhrase bool
	wordRe   *regexp.Regexp // set for short single tokens only
}

// Ruleset is a compiled, immutable view of the registry filters.
type Ruleset struct {
	hardBlacklist []keyword
	medicalExtra  []keyword
	positive      []keyword
	negative      []keyword
	thresholds    map[string]int
}

// NewRuleset compiles registry filters once at startup.
func NewRuleset(f sources.Filters) *Ruleset {
	return &Ruleset{
		hardBlacklist: compile(f.HardBlacklist),
		medicalExtra:  compile(f.MedicalExtraBlacklist),
		positive:      compile(f.Scoring.PositiveKeywords),
		negative:      compile(f.Scoring.NegativeKeywords),
		thresholds:    f.Thresholds,
	}
}

func compile(words []string) []keyword {
	out := make([]keyword, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		w = Normalize(w)
		// Config lists often carry both diacritic spellings of a word;
		// they fold to the same keyword and must not count twice.
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		k := keyword{text: w, isPhrase: strings.Contains(w, " ")}
		// Short tokens match on word boundaries so "ai" does not
		// fire inside "said".
		if !k.isPhrase && utf8.RuneCountInString(w) <= 3 {
			k.wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
		out = append(out, k)
	}
	return out
}

// Normalize lowercases, strips diacritics and collapses whitespace so
// "împușcături" matches a keyword written without diacritics.
func Normalize(s string) string {
	s = strings.ToLower(s)
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func matchAny(text string, kws []keyword) bool {
	for _, k := range kws {
		if k.wordRe != nil {
			if k.wordRe.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, k.text) {
			return true
		}
	}
	return false
}

func countMatches(text string, kws []keyword) int {
	n := 0
	for _, k := range kws {
		if k.wordRe != nil {
			if k.wordRe.MatchString(text) {
				n++
			}
			continue
		}
		if strings.Contains(text, k.text) {
			n++
		}
	}
	return n
}

// Score grades an article for a section. allowed is false when a
// blacklist entry fires; exclusion always wins over positive signal.
func (r *Ruleset) Score(sectionID, title, summary string) (score int, allowed bool) {
	text := Normalize(title + " " + summary)

	if matchAny(text, r.hardBlacklist) {
		return 0, false
	}
	if sectionID == "medical" && matchAny(text, r.medicalExtra) {
		return 0, false
	}

	score += countMatches(text, r.positive)
	score -= countMatches(text, r.negative)

	// Longer, descriptive summaries beat bare headlines.
	trimmed := strings.TrimSpace(summary)
	if utf8.RuneCountInString(trimmed) >= 120 {
		score++
	}
	if trimmed == "" {
		score--
	}

	if sectionsWithBias[sectionID] {
		score++
	}

	return score, true
}

// Include applies the veto and the section threshold in one step.
func (r *Ruleset) Include(sectionID, title, summary string) (int, bool) {
	score, allowed := r.Score(sectionID, title, summary)
	if !allowed {
		return score, false
	}
	return score, score >= r.thresholds[sectionID]
}
