// Package businessunit implements the business unit JSON API.
package businessunit

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/businessunit"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the business unit endpoints.
const Path = handler.APIPrefix + "/business-units"

// Service is the business unit handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the business unit handler.
var Handler = Service{}

type unitRequest struct {
	Name         string `json:"name"         validate:"required,max=255"`
	Jurisdiction string `json:"jurisdiction" validate:"max=100"`
	Status       string `json:"status"       validate:"omitempty,oneof=Active Archived"`
}

// Init initializes the business unit handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	view := auth.RequirePermission(authService, auth.PermCatalogueView)
	manage := auth.RequirePermission(authService, auth.PermUnitManage)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.List)
		router.Get("/:id", view, s.Get)
		router.Post(handler.RouterRootPath, manage, s.Post)
		router.Put("/:id", manage, s.Put)
		router.Delete("/:id", manage, s.Delete)
	})

	return nil
}

// List returns business units; ?active=true narrows to active units.
func (s *Service) List(c *fiber.Ctx) error {
	units, err := businessunit.List(s.db, c.QueryBool("active"))
	if err != nil {
		log.Error().Err(err).Msg("failed to list business units")

		return handler.Internal(c)
	}

	return c.JSON(units)
}

// Get returns one business unit.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid business unit id")
	}

	unit, err := businessunit.Get(s.db, id)
	if err != nil {
		if errors.Is(err, businessunit.ErrUnitNotFound) {
			return handler.NotFound(c, "business unit not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get business unit")

		return handler.Internal(c)
	}

	return c.JSON(unit)
}

// Post creates a business unit.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(unitRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	unit := &models.BusinessUnit{
		Name:         req.Name,
		Jurisdiction: req.Jurisdiction,
		Status:       models.UnitStatus(req.Status),
	}

	if err := businessunit.Create(s.db, unit); err != nil {
		log.Error().Err(err).Msg("failed to create business unit")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(unit)
}

// Put updates a business unit.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid business unit id")
	}

	req := new(unitRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	unit := &models.BusinessUnit{
		ID:           id,
		Name:         req.Name,
		Jurisdiction: req.Jurisdiction,
		Status:       models.UnitStatus(req.Status),
	}

	if err := businessunit.Update(s.db, unit); err != nil {
		if errors.Is(err, businessunit.ErrUnitNotFound) {
			return handler.NotFound(c, "business unit not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update business unit")

		return handler.Internal(c)
	}

	return c.JSON(unit)
}

// Delete removes a business unit. Mappings scoped to it become
// group-wide and its applicability rules are removed.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid business unit id")
	}

	if err := businessunit.Delete(s.db, id); err != nil {
		if errors.Is(err, businessunit.ErrUnitNotFound) {
			return handler.NotFound(c, "business unit not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete business unit")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
