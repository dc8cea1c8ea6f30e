// Package mapping implements the coverage mapping JSON API: linking,
// editing and unlinking mappings, ad-hoc content scoring and the status
// change audit trail.
package mapping

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/analysis"
	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the mapping endpoints.
const Path = handler.APIPrefix + "/mappings"

// Service is the mapping handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the mapping handler.
var Handler = Service{}

type mappingRequest struct {
	RequirementID  uint   `json:"requirementId"  validate:"required"`
	DocumentID     *uint  `json:"documentId"`
	BusinessUnitID *uint  `json:"businessUnitId"`
	CoverageStatus string `json:"coverageStatus" validate:"required"`
	Rationale      string `json:"rationale"`
}

// Init initializes the mapping handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	view := auth.RequirePermission(authService, auth.PermMappingView)
	manage := auth.RequirePermission(authService, auth.PermMappingManage)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.List)
		router.Get("/:id", view, s.Get)
		router.Get("/:id/score", view, s.Score)
		router.Get("/:id/history", view, s.History)
		router.Post(handler.RouterRootPath, manage, s.Post)
		router.Put("/:id", manage, s.Put)
		router.Delete("/:id", manage, s.Delete)
	})

	return nil
}

// List returns all mappings.
func (s *Service) List(c *fiber.Ctx) error {
	mappings, err := mapping.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list mappings")

		return handler.Internal(c)
	}

	return c.JSON(mappings)
}

// Get returns one mapping.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid mapping id")
	}

	m, err := mapping.Get(s.db, id)
	if err != nil {
		if errors.Is(err, mapping.ErrMappingNotFound) {
			return handler.NotFound(c, "mapping not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get mapping")

		return handler.Internal(c)
	}

	return c.JSON(m)
}

// Score runs an ad-hoc content match of the mapping's document against
// its requirement. Nothing is persisted.
func (s *Service) Score(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid mapping id")
	}

	match, err := analysis.ScoreMapping(s.db, id)
	if err != nil {
		if errors.Is(err, mapping.ErrMappingNotFound) {
			return handler.NotFound(c, "mapping not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to score mapping")

		return handler.Internal(c)
	}

	return c.JSON(match)
}

// History returns the machine-driven status change trail of one mapping.
func (s *Service) History(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid mapping id")
	}

	changes, err := mapping.StatusChanges(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint("id", id).Msg("failed to list status changes")

		return handler.Internal(c)
	}

	return c.JSON(changes)
}

// Post links a document (or records an intent) to a requirement.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(mappingRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	m := &models.RequirementMapping{
		RequirementID:  req.RequirementID,
		DocumentID:     req.DocumentID,
		BusinessUnitID: req.BusinessUnitID,
		CoverageStatus: models.CoverageStatus(req.CoverageStatus),
		Rationale:      req.Rationale,
	}

	if err := mapping.Create(s.db, m); err != nil {
		if errors.Is(err, mapping.ErrInvalidCoverageStatus) {
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create mapping")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

// Put updates the user-editable fields of a mapping.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid mapping id")
	}

	req := new(mappingRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	m := &models.RequirementMapping{
		ID:             id,
		RequirementID:  req.RequirementID,
		DocumentID:     req.DocumentID,
		BusinessUnitID: req.BusinessUnitID,
		CoverageStatus: models.CoverageStatus(req.CoverageStatus),
		Rationale:      req.Rationale,
	}

	if err := mapping.Update(s.db, m); err != nil {
		switch {
		case errors.Is(err, mapping.ErrMappingNotFound):
			return handler.NotFound(c, "mapping not found")
		case errors.Is(err, mapping.ErrInvalidCoverageStatus):
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update mapping")

		return handler.Internal(c)
	}

	return c.JSON(m)
}

// Delete unlinks a mapping.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid mapping id")
	}

	if err := mapping.Delete(s.db, id); err != nil {
		if errors.Is(err, mapping.ErrMappingNotFound) {
			return handler.NotFound(c, "mapping not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete mapping")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
