// Package logout implements the JSON logout endpoint.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/web/handler"
	"github.com/plantr/policyhub/internal/web/session"
)

// Path is the path of the logout endpoint.
const Path = handler.APIPrefix + "/logout"

// Service is the logout handler service.
type Service struct{}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	app.Post(Path, s.Post)

	return nil
}

// Post destroys the caller's session and clears the cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	if sessionID := c.Cookies("session"); sessionID != "" {
		_ = session.Destroy(sessionID)
	}

	c.ClearCookie("session")

	return c.JSON(fiber.Map{"ok": true})
}
