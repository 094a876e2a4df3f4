package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultHTTPTimeout = 120 * time.Second
	defaultAudioFormat = "wav"
)

// ErrAPIKeyRequired is returned before any request is sent when no credential is set.
var ErrAPIKeyRequired = errors.New("llm: api key required")

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client sends JSON-mode chat completions to an OpenRouter-compatible API.
type Client struct {
	cfg   Config
	http  *http.Client
	retry retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithRetryMaxAttempts sets how many times a request is tried in total.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) { c.retry.attempts = attempts }
}

// WithRetryBackoff sets the first retry delay and the cap for later ones.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.base = baseDelay
		c.retry.max = maxDelay
	}
}

// WithSleeper replaces the retry wait, for tests.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) { c.retry.sleeper = sleeper }
}

// NewClient constructs a client from cfg. Blank fields fall back to defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client := &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: timeout},
		retry: defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// HasAPIKey reports whether requests can be attempted at all.
func (c *Client) HasAPIKey() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Audio is an inline audio attachment sent alongside the user prompt.
type Audio struct {
	Data   []byte
	Format string
}

// Request is a single JSON-mode completion.
type Request struct {
	System string
	User   string
	Audio  *Audio
}

// CompleteJSON is Complete without an attachment.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.Complete(ctx, Request{System: systemPrompt, User: userPrompt})
}

// Complete sends req and returns the model's raw JSON reply.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	messages, err := buildMessages(req)
	if err != nil {
		return "", err
	}
	if !c.HasAPIKey() {
		return "", ErrAPIKeyRequired
	}

	payload := chatCompletionRequest{
		Model:          c.cfg.Model,
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var content string
	err = c.retry.do(ctx, "llm complete", func() error {
		reply, raw, err := c.post(ctx, payload)
		if err != nil {
			return err
		}
		text, finish := reply.firstContent()
		if text == "" {
			if len(reply.Choices) == 0 {
				return &emptyReplyError{Reason: "no choices", Snippet: summarizePayloadSnippet(string(raw))}
			}
			return &emptyReplyError{Reason: fmt.Sprintf("finish_reason=%q", finish), Snippet: summarizePayloadSnippet(string(raw))}
		}
		content = text
		return nil
	})
	return content, err
}

func buildMessages(req Request) ([]chatMessage, error) {
	system := strings.TrimSpace(req.System)
	user := strings.TrimSpace(req.User)
	switch {
	case system == "":
		return nil, errors.New("llm complete: system prompt required")
	case user == "":
		return nil, errors.New("llm complete: user prompt required")
	}

	var userContent any = user
	if req.Audio != nil {
		if len(req.Audio.Data) == 0 {
			return nil, errors.New("llm complete: audio attachment is empty")
		}
		format := strings.ToLower(strings.TrimSpace(req.Audio.Format))
		if format == "" {
			format = defaultAudioFormat
		}
		userContent = []contentPart{
			{Type: "text", Text: user},
			{Type: "input_audio", InputAudio: &inputAudio{
				Data:   base64.StdEncoding.EncodeToString(req.Audio.Data),
				Format: format,
			}},
		}
	}
	return []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: userContent},
	}, nil
}

// HealthCheck sends a trivial prompt to confirm the key and model work.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return fmt.Errorf("llm health: %w", err)
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &reply); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !reply.OK {
		return errors.New("llm health: model did not confirm")
	}
	return nil
}
