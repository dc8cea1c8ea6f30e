package ai

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/db/controller/aisettings"
	"github.com/plantr/policyhub/internal/db/controller/setting"
)

// ErrEngineNotInitialized is returned when AI features are used while the
// engine is disabled or not configured.
var ErrEngineNotInitialized = errors.New("ai engine not initialized")

type engine struct {
	*Runner
}

// Engine is the process-wide AI job engine.
var Engine engine

// Ready reports whether the engine can accept jobs.
func (e engine) Ready() bool {
	return e.Runner != nil
}

// Open initializes the AI engine from the static config, overridden by
// the provider settings stored in the database where present.
func Open(db *gorm.DB, cfg *config.AI) error {
	model := cfg.Model
	timeout := cfg.Timeout

	var maxTokens int

	settings := &aisettings.Settings{}

	err := settings.Load(db)

	switch {
	case err == nil:
		if settings.Model != "" {
			model = settings.Model
		}

		if settings.TimeoutSeconds > 0 {
			timeout = time.Duration(settings.TimeoutSeconds) * time.Second
		}

		maxTokens = settings.MaxTokens
	case errors.Is(err, setting.ErrSettingNotFound):
		// static config only
	default:
		return err
	}

	provider, err := NewProvider(model, timeout)
	if err != nil {
		return err
	}

	Engine.Runner = NewRunner(provider, maxTokens)

	log.Info().Str("model", model).Msg("ai engine initialized")

	return nil
}
