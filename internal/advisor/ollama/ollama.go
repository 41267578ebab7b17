// Package ollama talks to a local Ollama server's chat endpoint through the
// official API client.
package ollama

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"fridgetetris.app/internal/advisor"
	"fridgetetris.app/internal/domain"
)

// httpClient bounds each model call; vision models are slow but a hung
// server must not hold the request forever.
var httpClient = &http.Client{Timeout: 120 * time.Second}

type OllamaAdvisor struct {
	client *api.Client
	model  string
	prompt *advisor.Prompt
}

// NewOllamaAdvisor builds an advisor against the Ollama server at host
// (e.g. http://localhost:11434).
func NewOllamaAdvisor(host, model string, prompt *advisor.Prompt) (*OllamaAdvisor, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}

	// Strip any path so a host like http://x:11434/api/chat still works.
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}

	return &OllamaAdvisor{
		client: api.NewClient(base, httpClient),
		model:  model,
		prompt: prompt,
	}, nil
}

func (a *OllamaAdvisor) Name() string { return "ollama" }

func (a *OllamaAdvisor) Advise(ctx context.Context, req *advisor.Request) (*domain.Advice, error) {
	fridge, err := base64.StdEncoding.DecodeString(req.FridgeB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fridge image: %w", err)
	}
	groceries, err := base64.StdEncoding.DecodeString(req.GroceriesB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode groceries image: %w", err)
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: a.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: a.prompt.Build(req.Mode),
				Images:  []api.ImageData{fridge, groceries},
			},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": advisor.Temperature(req.Mode),
			"num_predict": advisor.MaxTokens,
		},
	}

	var text string
	err = a.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		text = resp.Message.Content
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return nil, fmt.Errorf("ollama returned status %d: %w", statusErr.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}

	if text == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	// The chat API never returns images; the service layer echoes the
	// fridge photo back instead.
	return &domain.Advice{Text: text}, nil
}
