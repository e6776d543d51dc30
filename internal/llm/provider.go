// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm talks to an OpenAI-compatible chat completions endpoint
// directly, bypassing the Markyt API. It is an alternative completion
// provider for offline development and for servers that expose the same
// protocol (Groq, OpenRouter, local gateways).
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single completion.
	DefaultTimeout = 60 * time.Second
)

// DefaultSystemPrompt frames the assistant as a markets explainer.
const DefaultSystemPrompt = `You are Markyt, an assistant that helps people understand stocks and financial markets.

- Explain prices, trends and company fundamentals in plain language.
- Structure answers in short paragraphs and present numbers clearly.
- Give balanced views that mention both opportunities and risks.
- When you analyse an investment, end with a short reminder that the information is educational and that the user should consult a licensed financial adviser before acting.

Keep a professional but friendly tone.`

var (
	// ErrNoAPIKey is returned by NewProvider without an API key.
	ErrNoAPIKey = errors.New("llm: API key is not set")

	// ErrEmptyResponse is returned when the endpoint sends no choices.
	ErrEmptyResponse = errors.New("llm: completion returned no choices")
)

// Config configures a Provider.
type Config struct {
	APIKey       string
	BaseURL      string // empty uses the OpenAI default
	Model        string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
}

// Provider completes chat turns with go-openai. It is safe for concurrent use.
type Provider struct {
	client *openai.Client
	cfg    Config
}

// NewProvider creates a provider. Empty Model, SystemPrompt and Timeout take
// their defaults.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}, nil
}

// Model returns the model name sent with each request.
func (p *Provider) Model() string {
	return p.cfg.Model
}

// Complete sends the system prompt, history and message and returns the
// first choice's content.
func (p *Provider) Complete(ctx context.Context, message string, history []model.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    p.buildMessages(message, history),
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) buildMessages(message string, history []model.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: p.cfg.SystemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == model.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
}
