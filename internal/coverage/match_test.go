package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plantr/policyhub/internal/db/models"
)

func TestTerms(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "Empty",
			text: "",
			want: []string{},
		},
		{
			name: "LowercasesAndSplitsOnPunctuation",
			text: "Encrypt data-at-rest; rotate keys!",
			want: []string{"encrypt", "data", "rest", "rotate", "keys"},
		},
		{
			name: "DropsShortTokensAndStopwords",
			text: "The entity shall log all access to PII",
			want: []string{"entity", "log", "access", "pii"},
		},
		{
			name: "Deduplicates",
			text: "review review review cycle",
			want: []string{"review", "cycle"},
		},
		{
			name: "KeepsDigits",
			text: "retain logs for 365 days",
			want: []string{"retain", "logs", "365", "days"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Terms(tt.text))
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		text     string
		want     MatchResult
	}{
		{
			name:     "EmptyMarkdownFlagged",
			markdown: "",
			text:     "any text",
			want: MatchResult{
				MatchedTerms: []string{},
				TotalTerms:   1,
			},
		},
		{
			name:     "TwoOfThreeTermsMatch",
			markdown: "the quick brown fox",
			text:     "quick fox jumps",
			want: MatchResult{
				Score:        67,
				MatchedTerms: []string{"fox", "quick"},
				TotalTerms:   3,
				HasMarkdown:  true,
			},
		},
		{
			name:     "ZeroOverlapStillHasMarkdown",
			markdown: "completely unrelated body",
			text:     "encryption rotation",
			want: MatchResult{
				MatchedTerms: []string{},
				TotalTerms:   2,
				HasMarkdown:  true,
			},
		},
		{
			name:     "FullOverlap",
			markdown: "All access events are logged and retained.",
			text:     "access logged retained",
			want: MatchResult{
				Score:        100,
				MatchedTerms: []string{"access", "logged", "retained"},
				TotalTerms:   3,
				HasMarkdown:  true,
			},
		},
		{
			name:     "SubstringMatchCounts",
			markdown: "Keys use strong encryption throughout.",
			text:     "encrypt keys",
			want: MatchResult{
				Score:        100,
				MatchedTerms: []string{"encrypt", "keys"},
				TotalTerms:   2,
				HasMarkdown:  true,
			},
		},
		{
			name:     "NoTermsExtracted",
			markdown: "some body",
			text:     "a an of",
			want: MatchResult{
				MatchedTerms: []string{},
				HasMarkdown:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.markdown, tt.text))
		})
	}
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  models.CoverageStatus
	}{
		{0, models.StatusNotCovered},
		{29, models.StatusNotCovered},
		{30, models.StatusPartiallyCovered},
		{59, models.StatusPartiallyCovered},
		{60, models.StatusCovered},
		{100, models.StatusCovered},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForScore(tt.score), "score %d", tt.score)
	}
}
