// Package dashboard implements the compliance overview JSON API.
package dashboard

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/coverage"
	"github.com/plantr/policyhub/internal/db/controller/applicability"
	"github.com/plantr/policyhub/internal/db/controller/businessunit"
	"github.com/plantr/policyhub/internal/db/controller/document"
	"github.com/plantr/policyhub/internal/db/controller/finding"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/db/controller/requirement"
	"github.com/plantr/policyhub/internal/db/controller/risk"
	"github.com/plantr/policyhub/internal/db/controller/source"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the dashboard endpoint.
const Path = handler.APIPrefix + "/dashboard"

// reviewWindow is how far ahead the dashboard looks for documents due review.
const reviewWindow = 30 * 24 * time.Hour

// Service is the dashboard handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

type sourceMetrics struct {
	SourceID  uint             `json:"sourceId"`
	Name      string           `json:"name"`
	ShortName string           `json:"shortName"`
	Metrics   coverage.Metrics `json:"metrics"`
}

type overview struct {
	Metrics       coverage.Metrics `json:"metrics"`
	Sources       []sourceMetrics  `json:"sources"`
	UnmappedCount int              `json:"unmappedCount"`
	UnitGapCount  int              `json:"unitGapCount"`
	OverStrict    int              `json:"overStrictCount"`
	OpenFindings  int64            `json:"openFindings"`
	TotalRisks    int              `json:"totalRisks"`
	HighRisks     int              `json:"highRisks"`
	DocsDueReview int              `json:"documentsDueReview"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// highRiskRating is the severity times likelihood value from which a risk
// counts as high on the dashboard.
const highRiskRating = 12

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	view := auth.RequirePermission(authService, auth.PermDashboardView)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.Get)
	})

	return nil
}

// Get returns the aggregated compliance overview.
func (s *Service) Get(c *fiber.Ctx) error {
	requirements, err := requirement.List(s.db, requirement.Filter{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list requirements for dashboard")

		return handler.Internal(c)
	}

	mappings, err := mapping.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list mappings for dashboard")

		return handler.Internal(c)
	}

	units, err := businessunit.List(s.db, false)
	if err != nil {
		log.Error().Err(err).Msg("failed to list business units for dashboard")

		return handler.Internal(c)
	}

	pred, err := applicability.BuildPredicate(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to build applicability predicate for dashboard")

		return handler.Internal(c)
	}

	openFindings, err := finding.CountOpen(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to count open findings for dashboard")

		return handler.Internal(c)
	}

	dueDocs, err := document.DueForReview(s.db, time.Now().Add(reviewWindow))
	if err != nil {
		log.Error().Err(err).Msg("failed to list documents due review for dashboard")

		return handler.Internal(c)
	}

	risks, err := risk.List(s.db, risk.Filter{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list risks for dashboard")

		return handler.Internal(c)
	}

	sources, err := source.List(s.db, source.Filter{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list sources for dashboard")

		return handler.Internal(c)
	}

	highRisks := 0
	for i := range risks {
		if int(risks[i].Severity)*int(risks[i].Likelihood) >= highRiskRating {
			highRisks++
		}
	}

	gaps := coverage.DetectGaps(requirements, mappings, units, pred)

	return c.JSON(overview{
		Metrics:       coverage.ComputeMetrics(requirements, mappings),
		Sources:       perSourceMetrics(sources, requirements, mappings),
		UnmappedCount: gaps.UnmappedCount,
		UnitGapCount:  gaps.UnitGapCount,
		OverStrict:    gaps.OverStrictCount,
		OpenFindings:  openFindings,
		TotalRisks:    len(risks),
		HighRisks:     highRisks,
		DocsDueReview: len(dueDocs),
		GeneratedAt:   time.Now().UTC(),
	})
}

// perSourceMetrics computes coverage per regulatory source. Mappings for
// requirements outside a source are treated as orphans by the metrics
// computation, so the full mapping set can be reused for every slice.
func perSourceMetrics(sources []models.RegulatorySource, requirements []models.Requirement, mappings []models.RequirementMapping) []sourceMetrics {
	out := make([]sourceMetrics, 0, len(sources))

	for i := range sources {
		src := &sources[i]

		var scoped []models.Requirement
		for j := range requirements {
			if requirements[j].SourceID == src.ID {
				scoped = append(scoped, requirements[j])
			}
		}

		out = append(out, sourceMetrics{
			SourceID:  src.ID,
			Name:      src.Name,
			ShortName: src.ShortName,
			Metrics:   coverage.ComputeMetrics(scoped, mappings),
		})
	}

	return out
}
