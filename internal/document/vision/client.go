package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"docverify/pkg/platform/circuit"
	"docverify/pkg/platform/sentinel"
)

// ErrNoImage is returned when the recto image is missing.
var ErrNoImage = errors.New("vision: recto image required")

// Image is one card face.
type Image struct {
	Data      []byte
	MediaType string // sniffed from Data when empty
}

func (i Image) dataURL() string {
	mt := i.MediaType
	if mt == "" {
		mt = http.DetectContentType(i.Data)
		if !strings.HasPrefix(mt, "image/") {
			mt = "image/jpeg"
		}
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Completer is the part of the OpenAI client the vision channel uses.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds the model endpoint settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Client asks a multimodal model to read a card and returns its raw answer.
type Client struct {
	api       Completer
	model     string
	timeout   time.Duration
	maxTokens int
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithCompleter replaces the OpenAI client, typically in tests.
func WithCompleter(api Completer) Option {
	return func(c *Client) { c.api = api }
}

// NewClient builds a client for an OpenAI-compatible endpoint.
func NewClient(cfg Config, opts ...Option) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	c := &Client{
		api:       openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
		breaker:   circuit.New("vision"),
		logger:    slog.Default(),
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 512
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read sends both faces to the model and returns its answer text for
// ParseJSON. The verso is optional. An open breaker yields
// sentinel.ErrUnavailable without calling the model.
func (c *Client) Read(ctx context.Context, recto Image, verso *Image) (string, error) {
	if len(recto.Data) == 0 {
		return "", ErrNoImage
	}
	if !c.breaker.Allow() {
		return "", fmt.Errorf("vision breaker %s open: %w", c.breaker.Name(), sentinel.ErrUnavailable)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.request(recto, verso)
	if err != nil {
		return "", err
	}
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.recordFailure(ctx, err)
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := errors.New("vision completion: empty response")
		c.recordFailure(ctx, err)
		return "", err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "vision breaker closed", "breaker", c.breaker.Name())
	}

	answer := resp.Choices[0].Message.Content
	c.logger.DebugContext(ctx, "vision answer received",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return answer, nil
}

func (c *Client) recordFailure(ctx context.Context, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "vision breaker opened", "breaker", c.breaker.Name(), "error", err)
	}
}

func (c *Client) request(recto Image, verso *Image) (openai.ChatCompletionRequest, error) {
	s, err := Schema()
	if err != nil {
		return openai.ChatCompletionRequest{}, fmt.Errorf("vision schema: %w", err)
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: rectoCaption},
		{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: recto.dataURL()}},
	}
	if verso != nil && len(verso.Data) > 0 {
		parts = append(parts,
			openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: versoCaption},
			openai.ChatMessagePart{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: verso.dataURL()}},
		)
	}
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: Prompt})

	return openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "identity_document",
				Schema: s,
				Strict: true,
			},
		},
	}, nil
}
