package classify

import (
	"testing"

	"github.com/vcarciu/vesti-bune/internal/sources"
)

func testFilters() sources.Filters {
	return sources.Filters{
		HardBlacklist:         []string{"arrested", "război", "proces penal"},
		MedicalExtraBlacklist: []string{"deces"},
		Thresholds:            map[string]int{"romania": 1, "science": 0},
		Scoring: sources.Scoring{
			PositiveKeywords: []string{"celebrates", "descoperire", "inaugurat", "energie verde"},
			NegativeKeywords: []string{"scandal", "criză"},
		},
	}
}

// Exclusion keywords take precedence: a crime keyword vetoes the
// article no matter how much positive signal it carries.
func TestBlacklistVetoBeatsPositiveSignal(t *testing.T) {
	r := NewRuleset(testFilters())

	_, allowed := r.Score("romania", "Town celebrates as suspect arrested", "celebrates celebrates celebrates")
	if allowed {
		t.Error("expected article with blacklist match to be vetoed")
	}
}

func TestVetoMatchesWithoutDiacritics(t *testing.T) {
	r := NewRuleset(testFilters())

	// Keyword is configured as "război"; article text has no diacritics.
	if _, allowed := r.Score("romania", "Continua razboiul comercial", ""); allowed {
		t.Error("expected diacritic-insensitive blacklist match")
	}
	// And the other way around.
	if _, allowed := r.Score("romania", "Proces penal pe rol", ""); allowed {
		t.Error("expected phrase blacklist match")
	}
}

func TestMedicalExtraBlacklistOnlyAppliesToMedical(t *testing.T) {
	r := NewRuleset(testFilters())

	if _, allowed := r.Score("medical", "Raport despre un deces", ""); allowed {
		t.Error("expected medical extra blacklist to veto in medical section")
	}
	if _, allowed := r.Score("science", "Raport despre un deces", ""); !allowed {
		t.Error("medical extra blacklist must not apply outside the medical section")
	}
}

func TestScoreCountsKeywords(t *testing.T) {
	r := NewRuleset(testFilters())

	score, allowed := r.Score("romania", "Parc inaugurat după o descoperire", "")
	if !allowed {
		t.Fatal("unexpected veto")
	}
	// inaugurat +1, descoperire +1, empty summary -1
	if score != 1 {
		t.Errorf("score = %d, want 1", score)
	}

	score, _ = r.Score("romania", "Scandal în oraș", "")
	// scandal -1, empty summary -1
	if score != -2 {
		t.Errorf("score = %d, want -2", score)
	}
}

func TestLongSummaryBias(t *testing.T) {
	r := NewRuleset(testFilters())

	long := make([]byte, 0, 130)
	for len(long) < 125 {
		long = append(long, "text descriptiv "...)
	}

	withSummary, _ := r.Score("romania", "Parc inaugurat", string(long))
	withoutSummary, _ := r.Score("romania", "Parc inaugurat", "")
	if withSummary-withoutSummary != 2 {
		t.Errorf("summary bias = %d, want 2 (rich +1 vs empty -1)", withSummary-withoutSummary)
	}
}

func TestSectionBias(t *testing.T) {
	r := NewRuleset(testFilters())

	scienceScore, _ := r.Score("science", "Descoperire importantă", "x")
	romaniaScore, _ := r.Score("romania", "Descoperire importantă", "x")
	if scienceScore != romaniaScore+1 {
		t.Errorf("science = %d, romania = %d, want science = romania+1", scienceScore, romaniaScore)
	}
}

func TestIncludeAppliesThreshold(t *testing.T) {
	r := NewRuleset(testFilters())

	// romania threshold is 1; one positive keyword and an empty
	// summary nets 0.
	if _, ok := r.Include("romania", "Parc inaugurat", ""); ok {
		t.Error("expected score below threshold to be excluded")
	}
	if _, ok := r.Include("romania", "Parc inaugurat, descoperire", ""); !ok {
		t.Error("expected score at threshold to be included")
	}
}

func TestShortKeywordsMatchWholeWordsOnly(t *testing.T) {
	f := testFilters()
	f.Scoring.PositiveKeywords = []string{"ai"}
	r := NewRuleset(f)

	// science bias +1, empty summary -1; a false "ai" hit inside
	// "said" would push this to 1.
	score, _ := r.Score("science", "The mayor said hello", "")
	if score != 0 {
		t.Errorf(`score = %d, want 0 ("ai" must not match inside "said")`, score)
	}
}

func TestDiacriticSpellingVariantsCountOnce(t *testing.T) {
	f := testFilters()
	f.Scoring.PositiveKeywords = []string{"câștigat", "castigat"}
	r := NewRuleset(f)

	// Both spellings fold to the same keyword; one match, empty
	// summary -1.
	score, _ := r.Score("romania", "Echipa a castigat finala", "")
	if score != 0 {
		t.Errorf("score = %d, want 0 (variant spellings must not double-count)", score)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Împușcături", "impuscaturi"},
		{"  Multe   Spații  ", "multe spatii"},
		{"CÂȘTIGAT", "castigat"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
