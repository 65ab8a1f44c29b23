// Package gemini provides a thin client over the Google GenAI SDK for
// single-shot structured completions.
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the Gemini API in JSON response mode. One request per turn,
// no retries: the caller substitutes a fallback result on any failure.
type Client struct {
	config Config
	genai  *genai.Client
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{config: cfg, genai: gc}, nil
}

// Name returns the configured model name.
func (c *Client) Name() string {
	return c.config.Model
}

// GenerateJSON sends one user message under a system instruction and returns
// the model's raw text, which is expected (but not guaranteed) to be a JSON
// object.
func (c *Client) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.config.Model, genai.Text(user), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}
