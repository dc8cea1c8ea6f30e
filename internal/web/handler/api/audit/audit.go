// Package audit implements the audit engagement JSON API.
package audit

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/audit"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the audit endpoints.
const Path = handler.APIPrefix + "/audits"

// Service is the audit handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the audit handler.
var Handler = Service{}

type auditRequest struct {
	Name      string `json:"name"      validate:"required,max=255"`
	SourceID  *uint  `json:"sourceId"`
	Auditor   string `json:"auditor"   validate:"max=100"`
	Status    string `json:"status"    validate:"omitempty,oneof=Scheduled 'In Progress' Complete"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *auditRequest) model(id uint) (*models.Audit, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return nil, err
	}

	end, err := parseDate(r.EndDate)
	if err != nil {
		return nil, err
	}

	return &models.Audit{
		ID:        id,
		Name:      r.Name,
		SourceID:  r.SourceID,
		Auditor:   r.Auditor,
		Status:    models.AuditStatus(r.Status),
		StartDate: start,
		EndDate:   end,
		Notes:     r.Notes,
	}, nil
}

// Init initializes the audit handler.
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

// List returns audits, optionally filtered by ?status=, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	audits, err := audit.List(s.db, models.AuditStatus(c.Query("status")))
	if err != nil {
		log.Error().Err(err).Msg("failed to list audits")

		return handler.Internal(c)
	}

	return c.JSON(audits)
}

// Get returns one audit.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid audit id")
	}

	a, err := audit.Get(s.db, id)
	if err != nil {
		if errors.Is(err, audit.ErrAuditNotFound) {
			return handler.NotFound(c, "audit not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get audit")

		return handler.Internal(c)
	}

	return c.JSON(a)
}

// Post creates an audit.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(auditRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	a, err := req.model(0)
	if err != nil {
		return handler.BadRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	if err := audit.Create(s.db, a); err != nil {
		log.Error().Err(err).Msg("failed to create audit")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(a)
}

// Put updates an audit.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid audit id")
	}

	req := new(auditRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	a, err := req.model(id)
	if err != nil {
		return handler.BadRequest(c, "invalid date, expected YYYY-MM-DD")
	}

	if err := audit.Update(s.db, a); err != nil {
		if errors.Is(err, audit.ErrAuditNotFound) {
			return handler.NotFound(c, "audit not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update audit")

		return handler.Internal(c)
	}

	return c.JSON(a)
}

// Delete removes an audit.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid audit id")
	}

	if err := audit.Delete(s.db, id); err != nil {
		if errors.Is(err, audit.ErrAuditNotFound) {
			return handler.NotFound(c, "audit not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete audit")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
