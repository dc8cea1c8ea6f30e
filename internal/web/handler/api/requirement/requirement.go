// Package requirement implements the requirement JSON API, including the
// per-requirement coverage rollup and applicability rules.
package requirement

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/coverage"
	"github.com/plantr/policyhub/internal/db/controller/applicability"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/db/controller/requirement"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the requirement endpoints.
const Path = handler.APIPrefix + "/requirements"

// Service is the requirement handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the requirement handler.
var Handler = Service{}

type requirementRequest struct {
	SourceID    uint   `json:"sourceId"    validate:"required"`
	Code        string `json:"code"        validate:"required,max=50"`
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description"`
	Category    string `json:"category"    validate:"max=100"`
	Owner       string `json:"owner"       validate:"max=100"`
}

type applicabilityRequest struct {
	BusinessUnitID uint  `json:"businessUnitId" validate:"required"`
	Applicable     *bool `json:"applicable"     validate:"required"`
}

// Init initializes the requirement handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	view := auth.RequirePermission(authService, auth.PermCatalogueView)
	manage := auth.RequirePermission(authService, auth.PermCatalogueManage)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.List)
		router.Get("/:id", view, s.Get)
		router.Post(handler.RouterRootPath, manage, s.Post)
		router.Put("/:id", manage, s.Put)
		router.Delete("/:id", manage, s.Delete)

		router.Get("/:id/coverage", view, s.Coverage)
		router.Get("/:id/applicability", view, s.Applicability)
		router.Put("/:id/applicability", manage, s.SetApplicability)
	})

	return nil
}

// List returns requirements matching the query filters.
func (s *Service) List(c *fiber.Ctx) error {
	filter := requirement.Filter{
		SourceID: uint(c.QueryInt("sourceId")),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	requirements, err := requirement.List(s.db, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list requirements")

		return handler.Internal(c)
	}

	return c.JSON(requirements)
}

// Get returns one requirement.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid requirement id")
	}

	req, err := requirement.Get(s.db, id)
	if err != nil {
		if errors.Is(err, requirement.ErrRequirementNotFound) {
			return handler.NotFound(c, "requirement not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get requirement")

		return handler.Internal(c)
	}

	return c.JSON(req)
}

// Coverage returns the requirement's mappings together with the
// aggregated best status.
func (s *Service) Coverage(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid requirement id")
	}

	if _, err := requirement.Get(s.db, id); err != nil {
		if errors.Is(err, requirement.ErrRequirementNotFound) {
			return handler.NotFound(c, "requirement not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get requirement")

		return handler.Internal(c)
	}

	mappings, err := mapping.ListByRequirement(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint("id", id).Msg("failed to list mappings")

		return handler.Internal(c)
	}

	return c.JSON(fiber.Map{
		"bestStatus": coverage.BestStatus(mappings),
		"mappings":   mappings,
	})
}

// Applicability returns the requirement's applicability rules.
func (s *Service) Applicability(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid requirement id")
	}

	rules, err := applicability.ListByRequirement(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint("id", id).Msg("failed to list applicability rules")

		return handler.Internal(c)
	}

	return c.JSON(rules)
}

// SetApplicability creates or updates the rule for one business unit.
func (s *Service) SetApplicability(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid requirement id")
	}

	req := new(applicabilityRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	rule, err := applicability.Set(s.db, id, req.BusinessUnitID, *req.Applicable)
	if err != nil {
		log.Error().Err(err).Uint("id", id).Msg("failed to set applicability rule")

		return handler.Internal(c)
	}

	return c.JSON(rule)
}

// Post creates a requirement.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(requirementRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	r := &models.Requirement{
		SourceID:    req.SourceID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Owner:       req.Owner,
	}

	if err := requirement.Create(s.db, r); err != nil {
		log.Error().Err(err).Msg("failed to create requirement")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Put updates a requirement.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid requirement id")
	}

	req := new(requirementRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	r := &models.Requirement{
		ID:          id,
		SourceID:    req.SourceID,
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Owner:       req.Owner,
	}

	if err := requirement.Update(s.db, r); err != nil {
		if errors.Is(err, requirement.ErrRequirementNotFound) {
			return handler.NotFound(c, "requirement not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update requirement")

		return handler.Internal(c)
	}

	return c.JSON(r)
}

// Delete removes a requirement along with its mappings.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid requirement id")
	}

	if err := requirement.Delete(s.db, id); err != nil {
		if errors.Is(err, requirement.ErrRequirementNotFound) {
			return handler.NotFound(c, "requirement not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete requirement")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
