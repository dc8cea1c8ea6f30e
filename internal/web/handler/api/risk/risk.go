// Package risk implements the risk register JSON API.
package risk

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/risk"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the risk endpoints.
const Path = handler.APIPrefix + "/risks"

// Service is the risk handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the risk handler.
var Handler = Service{}

type riskRequest struct {
	Title          string `json:"title"          validate:"required,max=255"`
	Description    string `json:"description"`
	Category       string `json:"category"       validate:"max=100"`
	Owner          string `json:"owner"          validate:"max=100"`
	Severity       int    `json:"severity"       validate:"required,min=1,max=5"`
	Likelihood     int    `json:"likelihood"     validate:"required,min=1,max=5"`
	BusinessUnitID *uint  `json:"businessUnitId"`
	Mitigation     string `json:"mitigation"`
}

func (r *riskRequest) model(id uint) *models.Risk {
	return &models.Risk{
		ID:             id,
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Owner:          r.Owner,
		Severity:       models.RiskLevel(r.Severity),
		Likelihood:     models.RiskLevel(r.Likelihood),
		BusinessUnitID: r.BusinessUnitID,
		Mitigation:     r.Mitigation,
	}
}

// Init initializes the risk handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	view := auth.RequirePermission(authService, auth.PermRegisterView)
	manage := auth.RequirePermission(authService, auth.PermRegisterManage)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.List)
		router.Get("/:id", view, s.Get)
		router.Post(handler.RouterRootPath, manage, s.Post)
		router.Put("/:id", manage, s.Put)
		router.Delete("/:id", manage, s.Delete)
	})

	return nil
}

// List returns risks matching the query filters, highest rating first.
func (s *Service) List(c *fiber.Ctx) error {
	filter := risk.Filter{
		Category:       c.Query("category"),
		BusinessUnitID: uint(c.QueryInt("businessUnitId")),
		MinRating:      c.QueryInt("minRating"),
	}

	risks, err := risk.List(s.db, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list risks")

		return handler.Internal(c)
	}

	return c.JSON(risks)
}

// Get returns one risk.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid risk id")
	}

	r, err := risk.Get(s.db, id)
	if err != nil {
		if errors.Is(err, risk.ErrRiskNotFound) {
			return handler.NotFound(c, "risk not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get risk")

		return handler.Internal(c)
	}

	return c.JSON(r)
}

// Post creates a risk.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(riskRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	r := req.model(0)

	if err := risk.Create(s.db, r); err != nil {
		if errors.Is(err, risk.ErrInvalidLevel) {
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create risk")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Put updates a risk.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid risk id")
	}

	req := new(riskRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	r := req.model(id)

	if err := risk.Update(s.db, r); err != nil {
		switch {
		case errors.Is(err, risk.ErrRiskNotFound):
			return handler.NotFound(c, "risk not found")
		case errors.Is(err, risk.ErrInvalidLevel):
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update risk")

		return handler.Internal(c)
	}

	return c.JSON(r)
}

// Delete removes a risk.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid risk id")
	}

	if err := risk.Delete(s.db, id); err != nil {
		if errors.Is(err, risk.ErrRiskNotFound) {
			return handler.NotFound(c, "risk not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete risk")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
