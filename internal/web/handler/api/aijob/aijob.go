// Package aijob implements the JSON API for background AI jobs.
package aijob

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/ai"
	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the AI job endpoints.
const Path = handler.APIPrefix + "/ai/jobs"

// Service is the AI job handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the AI job handler.
var Handler = Service{}

// Init initializes the AI job handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	run := auth.RequirePermission(authService, auth.PermAIRun)

	app.Route(Path, func(router fiber.Router) {
		router.Post("/automap", run, s.AutoMap)
		router.Post("/assess/:mappingId", run, s.Assess)
		router.Get("/:id", run, s.Get)
		router.Delete("/:id", run, s.Cancel)
	})

	return nil
}

func ready(c *fiber.Ctx) bool {
	if !ai.Engine.Ready() {
		_ = handler.Error(c, fiber.StatusServiceUnavailable, ai.ErrEngineNotInitialized.Error())

		return false
	}

	return true
}

// AutoMap starts a background job suggesting requirement to document mappings.
func (s *Service) AutoMap(c *fiber.Ctx) error {
	if !ready(c) {
		return nil
	}

	id, err := ai.Engine.StartAutoMap(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to start automap job")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id})
}

// Assess starts a background job assessing one mapping.
func (s *Service) Assess(c *fiber.Ctx) error {
	if !ready(c) {
		return nil
	}

	mappingID, ok := handler.ParamID(c, "mappingId")
	if !ok {
		return handler.BadRequest(c, "invalid mapping id")
	}

	id, err := ai.Engine.StartAssess(s.db, mappingID)
	if err != nil {
		if errors.Is(err, mapping.ErrMappingNotFound) {
			return handler.NotFound(c, "mapping not found")
		}

		log.Error().Err(err).Uint("mapping", mappingID).Msg("failed to start assess job")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id})
}

// Get returns the current state of a job, including results once complete.
func (s *Service) Get(c *fiber.Ctx) error {
	if !ready(c) {
		return nil
	}

	job, err := ai.Engine.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, ai.ErrJobNotFound) {
			return handler.NotFound(c, "job not found")
		}

		log.Error().Err(err).Str("id", c.Params("id")).Msg("failed to get job")

		return handler.Internal(c)
	}

	return c.JSON(job)
}

// Cancel stops a running job.
func (s *Service) Cancel(c *fiber.Ctx) error {
	if !ready(c) {
		return nil
	}

	if err := ai.Engine.Cancel(c.Params("id")); err != nil {
		if errors.Is(err, ai.ErrJobNotFound) {
			return handler.NotFound(c, "job not found")
		}

		log.Error().Err(err).Str("id", c.Params("id")).Msg("failed to cancel job")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
