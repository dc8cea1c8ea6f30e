// Package login implements the JSON login endpoint.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/web/handler"
	"github.com/plantr/policyhub/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPrefix + "/login"
)

// Service is the login handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	provider    *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.provider = auth.NewLocalProvider(db)

	app.Post(Path, s.Post)

	return nil
}

// Post handles a credential login and opens a session.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(loginRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, err := s.provider.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("login failed")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	sessionID := session.GenerateSessionID()

	userSession := &session.Data{User: *user}
	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	cookie := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: "Lax",
	}
	c.Cookie(cookie)

	permissions, err := s.authService.GetUserPermissions(user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to load permissions")

		permissions = nil
	}

	return c.JSON(fiber.Map{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"firstName":   user.FirstName,
		"lastName":    user.LastName,
		"permissions": permissions,
	})
}
