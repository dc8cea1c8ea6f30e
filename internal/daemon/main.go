// Package daemon wires the database, session store, AI engine and web
// service into one runnable process.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	sessionmemory "github.com/gofiber/storage/memory"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/ai"
	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/dsn"
	"github.com/plantr/policyhub/internal/db/models"
	"github.com/plantr/policyhub/internal/web"
	"github.com/plantr/policyhub/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go d.webService.WaitShutdown()

	return d.webService.Start(addr)
}

// openDB opens the configured database engine with gorm.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "mysql":
		dialector = gormmysql.Open(dsn.Create(cfg))
	case "postgres":
		dialector = gormpostgres.Open(dsn.CreatePostgres(cfg))
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DB.Name)
	default:
		return nil, fmt.Errorf("unknown gorm engine %q", cfg.DB.GormEngine)
	}

	return gorm.Open(dialector, &gorm.Config{})
}

// migrate runs the schema migrations for all models.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.RegulatorySource{},
		&models.Requirement{},
		&models.Document{},
		&models.RequirementMapping{},
		&models.CoverageStatusChange{},
		&models.BusinessUnit{},
		&models.ApplicabilityRule{},
		&models.Risk{},
		&models.Finding{},
		&models.Audit{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Setting{},
	)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if err = migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if err = seed(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}

	session.Init(sessionmemory.New(sessionmemory.Config{}))

	if cfg.AI.Enabled {
		if err = ai.Open(db, &cfg.AI); err != nil {
			log.Warn().Err(err).Msg("ai engine unavailable, ai endpoints disabled")
		}
	}

	return &Daemon{
		cfg:        cfg,
		webService: *web.New(cfg, db),
	}
}
