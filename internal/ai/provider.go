// Package ai wraps the external LLM service used by the auto-mapping and
// coverage assessment jobs. Providers are addressed with "provider:model"
// notation; API keys come from the environment and are never persisted.
package ai

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// defaultTimeout bounds one completion call; LLM responses are slow.
	defaultTimeout = 2 * time.Minute
	// defaultMaxTokens is the fallback when Request.MaxTokens is unset.
	defaultMaxTokens = 4096
)

var (
	// ErrInvalidModel is returned when the model string is not in
	// "provider:model" notation.
	ErrInvalidModel = errors.New("model must use provider:model notation (e.g. anthropic:claude-sonnet-4-5)")
	// ErrUnknownProvider is returned for a provider other than anthropic or openai.
	ErrUnknownProvider = errors.New("unknown provider: supported providers are anthropic and openai")
	// ErrMissingAPIKey is returned when the provider's API key environment
	// variable is not set.
	ErrMissingAPIKey = errors.New("provider API key environment variable not set")
)

// Request holds the parameters of one completion call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Response holds the result of one completion call. Model echoes the
// model that actually served the request.
type Response struct {
	Content string
	Model   string
}

// Provider is a completion backend.
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// NewProvider parses "provider:model" notation and constructs the matching
// provider. The API key is read from ANTHROPIC_API_KEY or OPENAI_API_KEY
// at construction time so a misconfigured deployment fails on startup, not
// mid-job. A zero timeout selects the default.
func NewProvider(providerModel string, timeout time.Duration) (Provider, error) {
	name, model, ok := strings.Cut(providerModel, ":")
	if !ok || name == "" || model == "" {
		return nil, errors.Wrap(ErrInvalidModel, providerModel)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{Timeout: timeout}

	switch name {
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, errors.Wrap(ErrMissingAPIKey, "ANTHROPIC_API_KEY")
		}

		return &anthropicProvider{model: model, apiKey: key, client: client}, nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, errors.Wrap(ErrMissingAPIKey, "OPENAI_API_KEY")
		}

		return &openaiProvider{model: model, apiKey: key, client: client}, nil
	}

	return nil, errors.Wrap(ErrUnknownProvider, name)
}

// truncate limits s to maxLen runes for inclusion in error messages.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	return string(r[:maxLen]) + "..."
}
