// Package web implements the HTTP service exposing the JSON API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/auth"
	"github.com/plantr/policyhub/internal/config"
	loggeradapter "github.com/plantr/policyhub/internal/logger/adapter/fiber"
	"github.com/plantr/policyhub/internal/web/handler"
	"github.com/plantr/policyhub/internal/web/handler/api/aijob"
	"github.com/plantr/policyhub/internal/web/handler/api/aisetting"
	"github.com/plantr/policyhub/internal/web/handler/api/analysis"
	"github.com/plantr/policyhub/internal/web/handler/api/audit"
	"github.com/plantr/policyhub/internal/web/handler/api/businessunit"
	"github.com/plantr/policyhub/internal/web/handler/api/dashboard"
	"github.com/plantr/policyhub/internal/web/handler/api/document"
	"github.com/plantr/policyhub/internal/web/handler/api/finding"
	"github.com/plantr/policyhub/internal/web/handler/api/mapping"
	"github.com/plantr/policyhub/internal/web/handler/api/requirement"
	"github.com/plantr/policyhub/internal/web/handler/api/risk"
	"github.com/plantr/policyhub/internal/web/handler/api/source"
	"github.com/plantr/policyhub/internal/web/handler/api/user"
	"github.com/plantr/policyhub/internal/web/handler/login"
	"github.com/plantr/policyhub/internal/web/handler/logout"
)

// CheckAliveURI is the health endpoint used by load balancers.
const CheckAliveURI = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: fail checkalive first so the
	// LB removes this instance before the listener stops.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// handlers lists every route handler registered on the app. Order matters
// only for readability, each handler owns its own path prefix.
func handlers() []handler.Service {
	return []handler.Service{
		&login.Handler,
		&logout.Handler,
		&dashboard.Handler,
		&source.Handler,
		&requirement.Handler,
		&document.Handler,
		&mapping.Handler,
		&businessunit.Handler,
		&risk.Handler,
		&finding.Handler,
		&audit.Handler,
		&analysis.Handler,
		&aijob.Handler,
		&aisetting.Handler,
		&user.Handler,
	}
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "PolicyHub",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(fiberrecover.New())
	}

	app.Use(loggeradapter.New(loggeradapter.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAliveURI,
	}))

	authService := auth.NewService(db)

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}

	service.alive.Store(true)

	app.Get(CheckAliveURI, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// handlers register their own routes with permission checks
	for _, h := range handlers() {
		if err := h.Init(app, cfg, db, authService); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize handler")
		}
	}

	return service
}
