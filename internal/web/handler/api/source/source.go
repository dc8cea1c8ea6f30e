// Package source implements the regulatory source JSON API.
package source

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/source"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the source endpoints.
const Path = handler.APIPrefix + "/sources"

// Service is the source handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the source handler.
var Handler = Service{}

type sourceRequest struct {
	Name         string `json:"name"         validate:"required,max=255"`
	ShortName    string `json:"shortName"    validate:"max=50"`
	Jurisdiction string `json:"jurisdiction" validate:"max=100"`
	Category     string `json:"category"     validate:"max=100"`
	URL          string `json:"url"          validate:"omitempty,url,max=512"`
	Description  string `json:"description"`
}

// Init initializes the source handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, auth.RequirePermission(authService, auth.PermCatalogueView), s.List)
		router.Get("/:id", auth.RequirePermission(authService, auth.PermCatalogueView), s.Get)
		router.Post(handler.RouterRootPath, auth.RequirePermission(authService, auth.PermCatalogueManage), s.Post)
		router.Put("/:id", auth.RequirePermission(authService, auth.PermCatalogueManage), s.Put)
		router.Delete("/:id", auth.RequirePermission(authService, auth.PermCatalogueManage), s.Delete)
	})

	return nil
}

// List returns sources matching the query filters.
func (s *Service) List(c *fiber.Ctx) error {
	filter := source.Filter{
		Category:     c.Query("category"),
		Jurisdiction: c.Query("jurisdiction"),
		Search:       c.Query("search"),
	}

	sources, err := source.List(s.db, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sources")

		return handler.Internal(c)
	}

	return c.JSON(sources)
}

// Get returns one source.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid source id")
	}

	src, err := source.Get(s.db, id)
	if err != nil {
		if errors.Is(err, source.ErrSourceNotFound) {
			return handler.NotFound(c, "source not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get source")

		return handler.Internal(c)
	}

	return c.JSON(src)
}

// Post creates a source.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(sourceRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	src := &models.RegulatorySource{
		Name:         req.Name,
		ShortName:    req.ShortName,
		Jurisdiction: req.Jurisdiction,
		Category:     req.Category,
		URL:          req.URL,
		Description:  req.Description,
	}

	if err := source.Create(s.db, src); err != nil {
		log.Error().Err(err).Msg("failed to create source")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(src)
}

// Put updates a source.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid source id")
	}

	req := new(sourceRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	src := &models.RegulatorySource{
		ID:           id,
		Name:         req.Name,
		ShortName:    req.ShortName,
		Jurisdiction: req.Jurisdiction,
		Category:     req.Category,
		URL:          req.URL,
		Description:  req.Description,
	}

	if err := source.Update(s.db, src); err != nil {
		if errors.Is(err, source.ErrSourceNotFound) {
			return handler.NotFound(c, "source not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update source")

		return handler.Internal(c)
	}

	return c.JSON(src)
}

// Delete removes a source. Deletion is blocked while requirements still
// reference the source.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid source id")
	}

	if err := source.Delete(s.db, id); err != nil {
		switch {
		case errors.Is(err, source.ErrSourceNotFound):
			return handler.NotFound(c, "source not found")
		case errors.Is(err, source.ErrSourceHasRequirements):
			return handler.Error(c, fiber.StatusConflict, "source still has requirements")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete source")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
