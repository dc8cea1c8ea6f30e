// Package document implements the policy document JSON API.
package document

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/document"
	"github.com/plantr/policyhub/internal/db/controller/mapping"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the document endpoints.
const Path = handler.APIPrefix + "/documents"

// Service is the document handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the document handler.
var Handler = Service{}

type documentRequest struct {
	Title          string     `json:"title"          validate:"required,max=255"`
	DocType        string     `json:"docType"        validate:"max=50"`
	Taxonomy       string     `json:"taxonomy"       validate:"max=255"`
	Owner          string     `json:"owner"          validate:"max=100"`
	Markdown       string     `json:"markdown"`
	NextReviewDate *time.Time `json:"nextReviewDate"`
}

// Init initializes the document handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	view := auth.RequirePermission(authService, auth.PermDocumentView)
	manage := auth.RequirePermission(authService, auth.PermDocumentManage)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, view, s.List)
		router.Get("/due-review", view, s.DueForReview)
		router.Get("/:id", view, s.Get)
		router.Get("/:id/mappings", view, s.Mappings)
		router.Post(handler.RouterRootPath, manage, s.Post)
		router.Put("/:id", manage, s.Put)
		router.Delete("/:id", manage, s.Delete)
	})

	return nil
}

// List returns documents matching the query filters.
func (s *Service) List(c *fiber.Ctx) error {
	filter := document.Filter{
		DocType:  c.Query("docType"),
		Taxonomy: c.Query("taxonomy"),
		Search:   c.Query("search"),
	}

	documents, err := document.List(s.db, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list documents")

		return handler.Internal(c)
	}

	return c.JSON(documents)
}

// DueForReview returns documents whose next review date falls before the
// given date (default: now plus 30 days).
func (s *Service) DueForReview(c *fiber.Ctx) error {
	before := time.Now().AddDate(0, 0, 30)

	if v := c.Query("before"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return handler.BadRequest(c, "before must be a YYYY-MM-DD date")
		}

		before = parsed
	}

	documents, err := document.DueForReview(s.db, before)
	if err != nil {
		log.Error().Err(err).Msg("failed to list documents due for review")

		return handler.Internal(c)
	}

	return c.JSON(documents)
}

// Get returns one document.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid document id")
	}

	doc, err := document.Get(s.db, id)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return handler.NotFound(c, "document not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to get document")

		return handler.Internal(c)
	}

	return c.JSON(doc)
}

// Mappings returns the mappings that link to one document.
func (s *Service) Mappings(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid document id")
	}

	mappings, err := mapping.ListByDocument(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint("id", id).Msg("failed to list document mappings")

		return handler.Internal(c)
	}

	return c.JSON(mappings)
}

// Post creates a document.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(documentRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	doc := &models.Document{
		Title:          req.Title,
		DocType:        req.DocType,
		Taxonomy:       req.Taxonomy,
		Owner:          req.Owner,
		Markdown:       req.Markdown,
		NextReviewDate: req.NextReviewDate,
	}

	if err := document.Create(s.db, doc); err != nil {
		log.Error().Err(err).Msg("failed to create document")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Put updates a document.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid document id")
	}

	req := new(documentRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	doc := &models.Document{
		ID:             id,
		Title:          req.Title,
		DocType:        req.DocType,
		Taxonomy:       req.Taxonomy,
		Owner:          req.Owner,
		Markdown:       req.Markdown,
		NextReviewDate: req.NextReviewDate,
	}

	if err := document.Update(s.db, doc); err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return handler.NotFound(c, "document not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to update document")

		return handler.Internal(c)
	}

	return c.JSON(doc)
}

// Delete removes a document. Mappings that referenced it survive with a
// null document and drop out of aggregation.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.BadRequest(c, "invalid document id")
	}

	if err := document.Delete(s.db, id); err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return handler.NotFound(c, "document not found")
		}

		log.Error().Err(err).Uint("id", id).Msg("failed to delete document")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
