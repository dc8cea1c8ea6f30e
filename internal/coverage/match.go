package coverage

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/plantr/policyhub/internal/db/models"
)

// stopwords are dropped during term extraction. The list is fixed so that
// scoring stays deterministic across runs and deployments.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "with": true, "that": true, "this": true, "from": true,
	"shall": true, "must": true, "should": true, "will": true, "may": true,
	"all": true, "any": true, "its": true, "has": true, "have": true,
	"been": true, "being": true, "was": true, "were": true, "each": true,
	"such": true, "than": true, "then": true, "into": true, "onto": true,
	"per": true, "via": true, "their": true, "there": true, "where": true,
	"when": true, "which": true, "these": true, "those": true, "other": true,
	"upon": true, "also": true, "can": true, "could": true, "would": true,
}

// minTermLen is the minimum token length in runes. Shorter tokens carry
// no signal in regulatory prose and are dropped.
const minTermLen = 3

// MatchResult is the outcome of scoring one document body against one
// requirement's descriptive text.
type MatchResult struct {
	// Score is the keyword overlap in [0,100].
	Score int `json:"score"`
	// MatchedTerms are the requirement terms found in the document body,
	// sorted for stable output.
	MatchedTerms []string `json:"matchedTerms"`
	// TotalTerms is the size of the extracted term set.
	TotalTerms int `json:"totalTerms"`
	// HasMarkdown distinguishes a document without a body from a genuine
	// zero-overlap score.
	HasMarkdown bool `json:"hasMarkdown"`
}

// Terms extracts the deterministic term set from requirement text:
// tokens are split on non-alphanumeric boundaries, lowercased,
// deduplicated, and dropped when shorter than three runes or on the
// stopword list. Order of first occurrence is preserved.
func Terms(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(tokens))

	terms := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if len([]rune(tok)) < minTermLen || stopwords[tok] || seen[tok] {
			continue
		}

		seen[tok] = true

		terms = append(terms, tok)
	}

	return terms
}

// Score computes the keyword-overlap score of a document body against
// requirement text. A term matches when it occurs as a substring of the
// lowercased body. An empty body yields score 0 with HasMarkdown false;
// an empty term set yields score 0 with HasMarkdown true.
func Score(markdown, requirementText string) MatchResult {
	result := MatchResult{MatchedTerms: make([]string, 0)}

	terms := Terms(requirementText)
	result.TotalTerms = len(terms)

	if markdown == "" {
		return result
	}

	result.HasMarkdown = true

	if len(terms) == 0 {
		return result
	}

	body := strings.ToLower(markdown)

	for _, term := range terms {
		if strings.Contains(body, term) {
			result.MatchedTerms = append(result.MatchedTerms, term)
		}
	}

	sort.Strings(result.MatchedTerms)

	ratio := float64(len(result.MatchedTerms)) / float64(len(terms))
	result.Score = int(math.Round(ratio * 100))

	return result
}

// StatusForScore maps an overlap score to a coverage status using fixed
// thresholds: 60 and above is Covered, 30 to 59 is Partially Covered,
// anything lower is Not Covered.
func StatusForScore(score int) models.CoverageStatus {
	switch {
	case score >= 60:
		return models.StatusCovered
	case score >= 30:
		return models.StatusPartiallyCovered
	default:
		return models.StatusNotCovered
	}
}
