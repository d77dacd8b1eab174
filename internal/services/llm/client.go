// Package llm phrases advisor replies with Gemini. Generation is
// advisory only; callers fall back to template text when it fails.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
)

// Generator produces a reply for a system prompt and user message.
// Satisfied by Client; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     logger.Logger
}

func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration, log logger.Logger) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperrors.NewLLMGenerationFailedError(err)
	}
	return &Client{client: c, model: model, timeout: timeout, log: log}, nil
}

// Generate runs a single completion. Deadline overruns map to the
// retryable timeout code so the caller's retry policy applies.
func (c *Client) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := m.GenerateContent(ctx, genai.Text(userMessage))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("generation timed out", map[string]interface{}{"model": c.model})
			return "", apperrors.NewLLMTimeoutError()
		}
		c.log.Error("generation failed", map[string]interface{}{"model": c.model, "error": err.Error()})
		return "", apperrors.NewLLMGenerationFailedError(err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", apperrors.NewLLMGenerationFailedError(errors.New("empty completion"))
	}
	return text, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
