// Package finding implements the compliance findings JSON API.
package finding

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/finding"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the finding endpoints.
const Path = handler.APIPrefix + "/findings"

// Service is the finding handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the finding handler.
var Handler = Service{}

type findingRequest struct {
	Title          string `json:"title"          validate:"required,max=255"`
	Description    string `json:"description"`
	Severity       string `json:"severity"       validate:"max=20"`
	Status         string `json:"status"`
	RequirementID  *uint  `json:"requirementId"`
	BusinessUnitID *uint  `json:"businessUnitId"`
	Owner          string `json:"owner"          validate:"max=100"`
	DueDate        string `json:"dueDate"`
}

func (r *findingRequest) model(id uint) (*models.Finding, error) {
	f := &models.Finding{
		ID:             id,
		Title:          r.Title,
		Description:    r.Description,
		Severity:       r.Severity,
		Status:         models.FindingStatus(r.Status),
		RequirementID:  r.RequirementID,
		BusinessUnitID: r.BusinessUnitID,
		Owner:          r.Owner,
	}

	if r.DueDate != "" {
		due, err := time.Parse("2006-01-02", r.DueDate)
		if err != nil {
			return nil, err
		}
		f.DueDate = &due
	}

	return f, nil
}

// Init initializes the finding handler.
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

// List returns findings matching the query filters, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	filter := finding.Filter{
		Status:         models.FindingStatus(c.Query("status")),
		RequirementID:  uint(c.QueryInt("requirementId")),
		BusinessUnitID: uint(c.QueryInt("businessUnitId")),
	}

	findings, err := finding.List(s.db, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list findings")

		return handler.Internal(c)
	}

	return c.JSON(findings)
}

// Get returns one finding.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid finding id")
	}

	f, err := finding.Get(s.db, id)
	if err != nil {
		if errors.Is(err, finding.ErrFindingNotFound) {
			return handler.NotFound(c, "finding not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get finding")

		return handler.Internal(c)
	}

	return c.JSON(f)
}

// Post creates a finding.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(findingRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	f, err := req.model(0)
	if err != nil {
		return handler.BadRequest(c, "invalid due date, expected YYYY-MM-DD")
	}

	if err := finding.Create(s.db, f); err != nil {
		if errors.Is(err, finding.ErrInvalidStatus) {
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Msg("failed to create finding")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(f)
}

// Put updates a finding.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid finding id")
	}

	req := new(findingRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	f, err := req.model(id)
	if err != nil {
		return handler.BadRequest(c, "invalid due date, expected YYYY-MM-DD")
	}

	if err := finding.Update(s.db, f); err != nil {
		switch {
		case errors.Is(err, finding.ErrFindingNotFound):
			return handler.NotFound(c, "finding not found")
		case errors.Is(err, finding.ErrInvalidStatus):
			return handler.BadRequest(c, err.Error())
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update finding")

		return handler.Internal(c)
	}

	return c.JSON(f)
}

// Delete removes a finding.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid finding id")
	}

	if err := finding.Delete(s.db, id); err != nil {
		if errors.Is(err, finding.ErrFindingNotFound) {
			return handler.NotFound(c, "finding not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete finding")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
