// Package analysis implements the coverage analysis JSON API.
package analysis

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/analysis"
	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the analysis endpoints.
const Path = handler.APIPrefix + "/analysis"

// Service is the analysis handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the analysis handler.
var Handler = Service{}

// Init initializes the analysis handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	run := auth.RequirePermission(authService, auth.PermAnalysisRun)

	app.Route(Path, func(router fiber.Router) {
		router.Post("/run", run, s.Run)
	})

	return nil
}

// Run executes a full coverage analysis. With ?refreshContent=true mapping
// statuses are rewritten from document content before metrics are computed.
func (s *Service) Run(c *fiber.Ctx) error {
	opts := analysis.Options{RefreshContent: c.QueryBool("refreshContent")}

	result, err := analysis.Run(s.db, opts)
	if err != nil {
		log.Error().Err(err).Msg("coverage analysis failed")

		return handler.Internal(c)
	}

	return c.JSON(result)
}
