// Package aisetting implements the admin JSON API for LLM provider settings.
package aisetting

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/aisettings"
	"github.com/plantr/policyhub/internal/db/controller/setting"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the AI settings endpoints.
const Path = handler.APIPrefix + "/admin/ai-settings"

// Service is the AI settings handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the AI settings handler.
var Handler = Service{}

// Init initializes the AI settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	admin := auth.RequirePermission(authService, auth.PermAdminSettings)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, admin, s.Get)
		router.Put(handler.RouterRootPath, admin, s.Put)
	})

	return nil
}

// Get returns the stored LLM provider settings. Until an admin saves them the
// configuration file values apply and this endpoint reports them as defaults.
func (s *Service) Get(c *fiber.Ctx) error {
	var settings aisettings.Settings

	err := settings.Load(s.db)

	switch {
	case err == nil:
	case errors.Is(err, setting.ErrSettingNotFound):
		settings = aisettings.Settings{
			Model:          s.cfg.AI.Model,
			TimeoutSeconds: int(s.cfg.AI.Timeout / time.Second),
		}
	default:
		log.Error().Err(err).Msg("failed to load ai settings")

		return handler.Internal(c)
	}

	return c.JSON(settings)
}

// Put stores new LLM provider settings. They take effect on the next daemon
// start, when the AI engine is reopened.
func (s *Service) Put(c *fiber.Ctx) error {
	settings := new(aisettings.Settings)
	if err := c.BodyParser(settings); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(settings); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := settings.Save(s.db); err != nil {
		log.Error().Err(err).Msg("failed to save ai settings")

		return handler.Internal(c)
	}

	return c.JSON(settings)
}
