// Package claude sends organize requests to the Anthropic Messages API
// through the go-anthropic client.
package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"fridgetetris.app/internal/advisor"
	"fridgetetris.app/internal/domain"
)

// httpClient bounds each model call; vision models are slow but a hung
// server must not hold the request forever.
var httpClient = &http.Client{Timeout: 120 * time.Second}

type ClaudeAdvisor struct {
	client *anthropic.Client
	model  string
	prompt *advisor.Prompt
}

// NewClaudeAdvisor builds an advisor against the Anthropic API. Extra opts
// are passed through to the client (tests use this to point at a fake).
func NewClaudeAdvisor(apiKey, model string, prompt *advisor.Prompt, opts ...anthropic.ClientOption) *ClaudeAdvisor {
	opts = append([]anthropic.ClientOption{anthropic.WithHTTPClient(httpClient)}, opts...)
	return &ClaudeAdvisor{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
		prompt: prompt,
	}
}

func (a *ClaudeAdvisor) Name() string { return "claude" }

func (a *ClaudeAdvisor) Advise(ctx context.Context, req *advisor.Request) (*domain.Advice, error) {
	temp := float32(advisor.Temperature(req.Mode))

	// One user message: both images as base64 PNG blocks, then the prompt.
	msg := anthropic.Message{
		Role: anthropic.RoleUser,
		Content: []anthropic.MessageContent{
			anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64, "image/png", req.FridgeB64)),
			anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64, "image/png", req.GroceriesB64)),
			anthropic.NewTextMessageContent(a.prompt.Build(req.Mode)),
		},
	}

	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(a.model),
		Messages:    []anthropic.Message{msg},
		MaxTokens:   advisor.MaxTokens,
		Temperature: &temp,
	})
	if err != nil {
		var reqErr *anthropic.RequestError
		if errors.As(err, &reqErr) {
			return nil, fmt.Errorf("claude returned status %d: %w", reqErr.StatusCode, err)
		}
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("claude api error (%s): %w", apiErr.Type, err)
		}
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return nil, fmt.Errorf("empty response from claude")
	}

	return &domain.Advice{Text: text}, nil
}
