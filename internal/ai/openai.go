package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

// openaiURL is a var so tests can point the provider at an httptest server.
var openaiURL = "https://api.openai.com/v1/chat/completions"

// SetOpenAIURL overrides the OpenAI endpoint. Intended for tests.
func SetOpenAIURL(u string) { openaiURL = u }

type openaiProvider struct {
	model  string
	apiKey string // never serialized
	client *http.Client
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openaiMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *openaiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	var messages []openaiMessage

	if req.System != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.System})
	}

	messages = append(messages, openaiMessage{Role: "user", Content: req.Prompt})

	payload := openaiRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal openai request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build openai request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "openai request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read openai response")
	}

	var parsed openaiResponse
	if err = json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrapf(err, "parse openai response (HTTP %d, body %s)",
			resp.StatusCode, truncate(string(raw), 200))
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return nil, errors.Errorf("openai: %s: %s", parsed.Error.Type, parsed.Error.Message)
		}

		return nil, errors.Errorf("openai: HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, errors.New("openai: no completion in response")
	}

	return &Response{Content: parsed.Choices[0].Message.Content, Model: "openai:" + parsed.Model}, nil
}
