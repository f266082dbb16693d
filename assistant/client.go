// Package assistant is an HTTP client for the email-assistant backend.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"golang.org/x/oauth2"
)

const (
	// DefaultBaseURL is where the backend listens when nothing is configured.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 8 << 20
	maxErrorDetail   = 200
)

// Config holds the settings needed to reach the backend.
type Config struct {
	BaseURL string
	Token   string // optional bearer token
	Timeout time.Duration
}

// Client talks to the four panel endpoints and the health probe.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Timeout and token
// handling are still applied on top of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client after validating cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("backend URL scheme must be http or https, got: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("backend URL must include a host (e.g., http://localhost:8000)")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.httpClient
	hc.Timeout = timeout
	if cfg.Token != "" {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
			Base:   base,
		}
	}
	c.httpClient = &hc

	return c, nil
}

// BaseURL returns the normalised backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Sync asks the backend to import mail and returns how many messages it synced.
func (c *Client) Sync(ctx context.Context) (int, error) {
	const op = "sync"
	body, err := c.do(ctx, op, http.MethodPost, "/sync_emails", nil)
	if err != nil {
		return 0, err
	}
	var sr syncResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return 0, shapeErr(op, "decode response: %v", err)
	}
	if sr.Synced == nil {
		return 0, shapeErr(op, "response has no %q count", "synced")
	}
	return *sr.Synced, nil
}

// ListEmails fetches every synced email in backend order.
func (c *Client) ListEmails(ctx context.Context) ([]Email, error) {
	const op = "list"
	body, err := c.do(ctx, op, http.MethodGet, "/emails", nil)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, shapeErr(op, "expected a JSON array of emails")
	}
	var emails []Email
	if err := json.Unmarshal(body, &emails); err != nil {
		return nil, shapeErr(op, "decode response: %v", err)
	}
	for i, e := range emails {
		if e.MessageID == "" {
			return nil, shapeErr(op, "email at index %d has no message_id", i)
		}
	}
	if emails == nil {
		emails = []Email{}
	}
	return emails, nil
}

// GenerateDraft requests a reply draft for one message.
func (c *Client) GenerateDraft(ctx context.Context, req DraftRequest) (string, error) {
	const op = "draft"
	if req.MessageID == "" {
		return "", fmt.Errorf("%s: message id is required", op)
	}
	if !req.Tone.Valid() {
		return "", fmt.Errorf("%s: unknown tone %q", op, req.Tone)
	}
	body, err := c.do(ctx, op, http.MethodPost, "/draft", req)
	if err != nil {
		return "", err
	}
	var dr draftResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return "", shapeErr(op, "decode response: %v", err)
	}
	if dr.Draft == nil {
		return "", shapeErr(op, "response has no %q text", "draft")
	}
	return *dr.Draft, nil
}

// SendDraft submits draft text for (simulated) delivery.
func (c *Client) SendDraft(ctx context.Context, req SendRequest) (SendAck, error) {
	const op = "send"
	if req.MessageID == "" {
		return nil, fmt.Errorf("%s: message id is required", op)
	}
	body, err := c.do(ctx, op, http.MethodPost, "/send", req)
	if err != nil {
		return nil, err
	}
	var ack SendAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, shapeErr(op, "decode response: %v", err)
	}
	if ack == nil {
		return nil, shapeErr(op, "expected an acknowledgement object")
	}
	return ack, nil
}

// Health probes the backend root endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	const op = "health"
	body, err := c.do(ctx, op, http.MethodGet, "/", nil)
	if err != nil {
		return Health{}, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return Health{}, shapeErr(op, "decode response: %v", err)
	}
	return h, nil
}

// envelope matches the error envelope the backend wraps failures in.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do performs one request and returns the response body of a successful call.
func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"op", op, "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, networkErr(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkErr(op, fmt.Errorf("read response: %w", err))
	}
	c.logger.Debug("backend request",
		"op", op, "method", method, "path", path, "request_id", requestID,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &Error{Op: op, Kind: KindBackend, Status: resp.StatusCode, Message: errorDetail(body)}
		c.logger.Warn("backend returned error", "op", op, "request_id", requestID, "status", resp.StatusCode)
		return nil, err
	}

	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Success != nil && !*env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, &Error{Op: op, Kind: KindBackend, Status: resp.StatusCode, Message: msg}
	}

	return body, nil
}

// errorDetail extracts a readable message from an error response body.
func errorDetail(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	detail := strings.TrimSpace(string(body))
	detail = runewidth.Truncate(detail, maxErrorDetail, "...")
	if detail == "" {
		detail = "empty response"
	}
	return detail
}
