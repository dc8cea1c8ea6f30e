// Package user implements the user administration JSON API.
package user

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/web/handler"
)

// Path is the base path of the user administration endpoints.
const Path = handler.APIPrefix + "/users"

// Service is the user handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	provider  *auth.LocalProvider
	validator *validator.Validate
}

// Handler is the user handler.
var Handler = Service{}

type createUserRequest struct {
	Username  string `json:"username"  validate:"required,max=100"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	RoleID    uint   `json:"roleId"    validate:"required"`
}

type updateUserRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	RoleID    uint   `json:"roleId"    validate:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// Init initializes the user handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.provider = auth.NewLocalProvider(db)
	s.validator = validator.New()

	admin := auth.RequirePermission(authService, auth.PermAdminUsers)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, admin, s.List)
		router.Get("/:id", admin, s.Get)
		router.Post(handler.RouterRootPath, admin, s.Post)
		router.Put("/:id", admin, s.Put)
		router.Put("/:id/password", admin, s.ResetPassword)
		router.Put("/:id/activate", admin, s.Activate)
		router.Put("/:id/deactivate", admin, s.Deactivate)
		router.Delete("/:id", admin, s.Delete)
	})

	return nil
}

func paramUserID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

// List returns users with offset pagination. ?active=true restricts to
// accounts that can log in.
func (s *Service) List(c *fiber.Ctx) error {
	var active *bool

	if c.Query("active") != "" {
		v := c.QueryBool("active")
		active = &v
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	users, total, err := s.provider.ListUsers(active, limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")

		return handler.Internal(c)
	}

	return c.JSON(fiber.Map{"users": users, "total": total})
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := paramUserID(c)
	if !ok {
		return handler.BadRequest(c, "invalid user id")
	}

	user, err := s.provider.GetUserByID(id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.NotFound(c, "user not found")
		}

		log.Error().Err(err).Uint64("id", id).Msg("failed to get user")

		return handler.Internal(c)
	}

	return c.JSON(user)
}

// Post creates a user account.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(createUserRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	user, err := s.provider.CreateUser(req.Username, req.Email, req.Password, req.FirstName, req.LastName, req.RoleID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNameOrEmailExists) {
			return handler.Error(c, fiber.StatusConflict, err.Error())
		}

		log.Error().Err(err).Str("username", req.Username).Msg("failed to create user")

		return handler.Internal(c)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Put updates a user's profile and role.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := paramUserID(c)
	if !ok {
		return handler.BadRequest(c, "invalid user id")
	}

	req := new(updateUserRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.provider.UpdateUser(id, req.Email, req.FirstName, req.LastName, req.RoleID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.NotFound(c, "user not found")
		}

		log.Error().Err(err).Uint64("id", id).Msg("failed to update user")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ResetPassword sets a new password without checking the old one.
func (s *Service) ResetPassword(c *fiber.Ctx) error {
	id, ok := paramUserID(c)
	if !ok {
		return handler.BadRequest(c, "invalid user id")
	}

	req := new(resetPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.BadRequest(c, "invalid request body")
	}

	if err := s.validator.Struct(req); err != nil {
		return handler.BadRequest(c, err.Error())
	}

	if err := s.provider.ResetPassword(id, req.Password); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.NotFound(c, "user not found")
		}

		log.Error().Err(err).Uint64("id", id).Msg("failed to reset password")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Activate enables a user account.
func (s *Service) Activate(c *fiber.Ctx) error {
	return s.setActive(c, true)
}

// Deactivate disables a user account without deleting it.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	return s.setActive(c, false)
}

func (s *Service) setActive(c *fiber.Ctx, active bool) error {
	id, ok := paramUserID(c)
	if !ok {
		return handler.BadRequest(c, "invalid user id")
	}

	var err error
	if active {
		err = s.provider.ActivateUser(id)
	} else {
		err = s.provider.DeactivateUser(id)
	}

	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.NotFound(c, "user not found")
		}

		log.Error().Err(err).Uint64("id", id).Bool("active", active).Msg("failed to change user state")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a user account.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := paramUserID(c)
	if !ok {
		return handler.BadRequest(c, "invalid user id")
	}

	if err := s.provider.DeleteUser(id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return handler.NotFound(c, "user not found")
		}

		log.Error().Err(err).Uint64("id", id).Msg("failed to delete user")

		return handler.Internal(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
