// Package analysis implements the "refresh gap analysis" batch: one pass
// over the full requirement, mapping, document and business unit universe
// producing coverage metrics, a gap report, and optionally rewriting
// mapping coverage statuses from content match scores.
package analysis

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/coverage"
	"github.com/plantr/policyhub/internal/db/controller/applicability"
	"github.com/plantr/policyhub/internal/db/controller/businessunit"
	"github.com/plantr/policyhub/internal/db/controller/document"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/db/controller/requirement"
	"github.com/plantr/policyhub/internal/db/models"
)

// Options controls a batch run.
type Options struct {
	// RefreshContent enables the content match pass that rewrites mapping
	// coverage statuses from markdown overlap scores.
	RefreshContent bool
}

// ContentUpdate describes one status rewrite performed by the content
// match pass, retained in the batch result for display.
type ContentUpdate struct {
	MappingID       uint                  `json:"mappingId"`
	RequirementCode string                `json:"requirementCode"`
	DocumentTitle   string                `json:"documentTitle"`
	OldStatus       models.CoverageStatus `json:"oldStatus"`
	NewStatus       models.CoverageStatus `json:"newStatus"`
	Score           int                   `json:"score"`
	MatchedTerms    []string              `json:"matchedTerms"`
}

// Result is the outcome of one batch run.
type Result struct {
	Metrics coverage.Metrics   `json:"metrics"`
	Gaps    coverage.GapReport `json:"gaps"`

	// ContentAttempted counts mappings eligible for the content pass.
	// ContentUpdated counts those whose status actually changed;
	// ContentFailed counts persistence failures. Attempted minus updated
	// minus failed is the number already at their derived status.
	ContentAttempted int             `json:"contentAttempted"`
	ContentUpdated   int             `json:"contentUpdated"`
	ContentFailed    int             `json:"contentFailed"`
	ContentUpdates   []ContentUpdate `json:"contentUpdates"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// Run executes the batch. Data is fetched once up front; the reductions
// themselves are pure. A persistence failure during the content pass is
// counted and skipped, never fatal: re-running the batch retries exactly
// the mappings left unrefreshed. Without the content pass the run is
// read-only and idempotent.
func Run(db *gorm.DB, opts Options) (*Result, error) {
	requirements, err := requirement.List(db, requirement.Filter{})
	if err != nil {
		return nil, err
	}

	mappings, err := mapping.List(db)
	if err != nil {
		return nil, err
	}

	units, err := businessunit.List(db, false)
	if err != nil {
		return nil, err
	}

	pred, err := applicability.BuildPredicate(db)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ContentUpdates: make([]ContentUpdate, 0),
		GeneratedAt:    time.Now(),
	}

	if opts.RefreshContent {
		if err := refreshContent(db, requirements, mappings, result); err != nil {
			return nil, err
		}

		// The content pass may have rewritten statuses; aggregate over
		// the updated rows.
		if mappings, err = mapping.List(db); err != nil {
			return nil, err
		}
	}

	result.Metrics = coverage.ComputeMetrics(requirements, mappings)
	result.Gaps = coverage.DetectGaps(requirements, mappings, units, pred)

	log.Debug().
		Int("requirements", len(requirements)).
		Int("mappings", len(mappings)).
		Int("contentUpdated", result.ContentUpdated).
		Msg("gap analysis complete")

	return result, nil
}

// refreshContent scores every mapping whose document carries markdown
// against its requirement's descriptive text and rewrites the stored
// coverage status where the derived status differs. Each rewrite is
// recorded as a CoverageStatusChange row.
func refreshContent(db *gorm.DB, requirements []models.Requirement, mappings []models.RequirementMapping, result *Result) error {
	documents, err := document.List(db, document.Filter{})
	if err != nil {
		return err
	}

	docsByID := make(map[uint]*models.Document, len(documents))
	for i := range documents {
		docsByID[documents[i].ID] = &documents[i]
	}

	reqsByID := make(map[uint]*models.Requirement, len(requirements))
	for i := range requirements {
		reqsByID[requirements[i].ID] = &requirements[i]
	}

	for i := range mappings {
		m := &mappings[i]

		req := reqsByID[m.RequirementID]
		if !m.HasDocument() || req == nil {
			continue
		}

		doc := docsByID[*m.DocumentID]
		if doc == nil || !doc.HasMarkdown() {
			continue
		}

		result.ContentAttempted++

		match := coverage.Score(doc.Markdown, req.Description)

		derived := coverage.StatusForScore(match.Score)
		if derived == m.CoverageStatus {
			continue
		}

		rationale := contentRationale(match)
		if err := mapping.UpdateStatus(db, m.ID, derived, match.Score, rationale); err != nil {
			result.ContentFailed++

			log.Warn().Err(err).Uint("mapping", m.ID).Msg("content status update failed")

			continue
		}

		change := &models.CoverageStatusChange{
			MappingID:    m.ID,
			OldStatus:    m.CoverageStatus,
			NewStatus:    derived,
			Score:        match.Score,
			MatchedTerms: strings.Join(match.MatchedTerms, ","),
		}
		if err := mapping.RecordStatusChange(db, change); err != nil {
			log.Warn().Err(err).Uint("mapping", m.ID).Msg("status change audit write failed")
		}

		result.ContentUpdated++

		result.ContentUpdates = append(result.ContentUpdates, ContentUpdate{
			MappingID:       m.ID,
			RequirementCode: req.Code,
			DocumentTitle:   doc.Title,
			OldStatus:       m.CoverageStatus,
			NewStatus:       derived,
			Score:           match.Score,
			MatchedTerms:    match.MatchedTerms,
		})
	}

	return nil
}

// contentRationale renders the machine rationale stored on the mapping.
func contentRationale(match coverage.MatchResult) string {
	if len(match.MatchedTerms) == 0 {
		return "content analysis found no matching terms"
	}

	return "content analysis matched: " + strings.Join(match.MatchedTerms, ", ")
}

// ScoreMapping scores a single mapping ad hoc, without mutating anything.
func ScoreMapping(db *gorm.DB, mappingID uint) (*coverage.MatchResult, error) {
	m, err := mapping.Get(db, mappingID)
	if err != nil {
		return nil, err
	}

	req, err := requirement.Get(db, m.RequirementID)
	if err != nil {
		return nil, err
	}

	var markdown string

	if m.HasDocument() {
		doc, err := document.Get(db, *m.DocumentID)
		if err != nil {
			return nil, err
		}

		markdown = doc.Markdown
	}

	match := coverage.Score(markdown, req.Description)

	return &match, nil
}
