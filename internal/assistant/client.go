// Package assistant talks to a Mistral-compatible chat completion and
// transcription API on behalf of the study planner, tutor chat,
// summarizer, and voice notes.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"studyroom/internal/config"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	planMaxTokens      = 400
	askMaxTokens       = 300
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("assistant: api key required")

// ErrEmptyInput is returned when a prompt or upload is blank.
var ErrEmptyInput = errors.New("assistant: input required")

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey           string
	BaseURL          string
	TranscriptionURL string
	Model            string
	TranscribeModel  string
	Timeout          time.Duration
	RetryMax         int
}

// ConfigFrom maps application config onto client settings.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:           cfg.Assistant.APIKey,
		BaseURL:          cfg.Assistant.BaseURL,
		TranscriptionURL: cfg.Assistant.TranscriptionURL,
		Model:            cfg.Assistant.Model,
		TranscribeModel:  cfg.Assistant.TranscribeModel,
		Timeout:          cfg.AssistantTimeout(),
		RetryMax:         cfg.Assistant.RetryMax,
	}
}

type Client struct {
	cfg  Config
	http *retryablehttp.Client
}

// Option customizes the client.
type Option func(*Client)

// WithRetryWait overrides the retry backoff bounds.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

// WithHTTPClient overrides the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTPClient = hc
		}
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.TranscriptionURL = strings.TrimSpace(cfg.TranscriptionURL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.RetryMax
	hc.HTTPClient.Timeout = cfg.Timeout
	hc.Logger = nil // suppress retryablehttp's default logging

	client := &Client{cfg: cfg, http: hc}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Plan asks for a seven day study plan covering topic.
func (c *Client) Plan(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("%w: topic", ErrEmptyInput)
	}
	content, err := c.complete(ctx, "Create a 7-day study plan for "+topic+".", planMaxTokens)
	if err != nil {
		return "", fmt.Errorf("study plan: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// Ask forwards a free-form question.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question", ErrEmptyInput)
	}
	content, err := c.complete(ctx, question, askMaxTokens)
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// Summarize condenses text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text", ErrEmptyInput)
	}
	content, err := c.complete(ctx, "Summarize this: "+text, 0)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return content, nil
}

// Transcribe uploads recorded audio and returns its transcript.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}
	if audio == nil {
		return "", fmt.Errorf("%w: audio", ErrEmptyInput)
	}
	if strings.TrimSpace(filename) == "" {
		filename = "audio.webm"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("transcribe: create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("transcribe: copy audio: %w", err)
	}
	if err := form.WriteField("model", c.cfg.TranscribeModel); err != nil {
		return "", fmt.Errorf("transcribe: write model field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("transcribe: close form: %w", err)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, c.cfg.TranscriptionURL, form.FormDataContentType(), body.Bytes(), &out); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return out.Text, nil
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}
	encoded, err := json.Marshal(chatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	var completion chatCompletionResponse
	if err := c.post(ctx, c.cfg.BaseURL, "application/json", encoded, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, payload []byte, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http error (timeout=%s): %w", c.cfg.Timeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
