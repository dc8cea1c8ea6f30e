package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// anthropicURL is a var so tests can point the provider at an httptest
// server.
var anthropicURL = "https://api.anthropic.com/v1/messages"

// SetAnthropicURL overrides the Anthropic endpoint. Intended for tests.
func SetAnthropicURL(u string) { anthropicURL = u }

const anthropicVersion = "2023-06-01"

// maxResponseBytes caps how much of a provider response body is read.
const maxResponseBytes = 10 << 20

type anthropicProvider struct {
	model  string
	apiKey string // never serialized
	client *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *anthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	payload := anthropicRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal anthropic request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build anthropic request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read anthropic response")
	}

	var parsed anthropicResponse
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrapf(err, "parse anthropic response (HTTP %d, body %s)",
			resp.StatusCode, truncate(string(raw), 200))
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, errors.Errorf("anthropic: %s: %s", parsed.Error.Type, parsed.Error.Message)
		}

		return nil, errors.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var content string

	for _, block := range parsed.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	if content == "" {
		return nil, errors.Errorf("anthropic: no text content in response (%d blocks)", len(parsed.Content))
	}

	return &Response{Content: content, Model: "anthropic:" + parsed.Model}, nil
}
