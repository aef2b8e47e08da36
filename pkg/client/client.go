package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/assist/internal/logging"
	"github.com/google/uuid"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://satillite-town-backend-5i11.vercel.app"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const maxResponseBytes = 10 << 20

// Endpoint describes one remote operation.
type Endpoint struct {
	Name     string
	Method   string
	Path     string
	Fallback string
}

var (
	EndpointRegister = Endpoint{"register", http.MethodPost, "/api/auth/user/register", "Registration failed"}
	EndpointLogin    = Endpoint{"login", http.MethodPost, "/api/auth/user/login", "Login failed"}
	EndpointCreator  = Endpoint{"creator_profile", http.MethodPost, "/api/auth/user/uploadJobCreatorProfile", "Failed to create profile. Please try again."}
	EndpointNGO      = Endpoint{"create_ngo", http.MethodPost, "/api/ngo/createNgo", "Failed to create NGO profile. Please try again."}
	EndpointListNGOs = Endpoint{"list_ngos", http.MethodGet, "/api/ngo/getAllNgos", "Failed to fetch NGOs"}
	EndpointHelp     = Endpoint{"create_request", http.MethodPost, "/api/ngo/createRequest", "Failed to submit request. Please try again."}
)

// Endpoints lists every remote operation.
var Endpoints = []Endpoint{EndpointRegister, EndpointLogin, EndpointCreator, EndpointNGO, EndpointListNGOs, EndpointHelp}

// RequestEvent describes a completed round trip.
type RequestEvent struct {
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Observer is notified after every request, successful or not.
type Observer func(RequestEvent)

// Client talks to the remote API. It performs exactly one request per call and never retries.
// There is no default timeout; callers bound requests through the context or WithTimeout.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	observer Observer
	newID    func() string
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers a request observer (metrics).
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API host the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// do sends one request and returns the decoded "data" member of the response envelope.
func (c *Client) do(ctx context.Context, ep Endpoint, body io.Reader, contentType string) (data any, err error) {
	start := time.Now()
	status := 0
	defer func() {
		if c.observer != nil {
			c.observer(RequestEvent{Endpoint: ep.Name, StatusCode: status, Duration: time.Since(start), Err: err})
		}
	}()

	req, err := http.NewRequestWithContext(ctx, ep.Method, c.baseURL+ep.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", ep.Name, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := c.newID()
	req.Header.Set(RequestIDHeader, reqID)

	logger := c.logger.With("endpoint", ep.Name, "request_id", reqID)
	logger.Debug("API request", "method", ep.Method, "path", ep.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("API request failed", "err", err)
		return nil, &APIError{Endpoint: ep.Name, Message: ep.Fallback, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &APIError{Endpoint: ep.Name, StatusCode: status, Message: ep.Fallback, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if status < 200 || status > 299 {
		msg := ep.Fallback
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		logger.Info("API request rejected", "status", status, "message", msg)
		return nil, &APIError{Endpoint: ep.Name, StatusCode: status, Message: msg}
	}
	if decodeErr != nil {
		logger.Warn("Malformed API response", "status", status, "err", decodeErr)
		return nil, &APIError{Endpoint: ep.Name, StatusCode: status, Message: ep.Fallback, Err: decodeErr}
	}

	logger.Debug("API request succeeded", "status", status, "duration", time.Since(start))
	return env.Data, nil
}

func (c *Client) postJSON(ctx context.Context, ep Endpoint, payload any) (any, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", ep.Name, err)
	}
	return c.do(ctx, ep, bytes.NewReader(b), "application/json")
}

func (c *Client) postForm(ctx context.Context, ep Endpoint, parts []part) (any, error) {
	body, contentType, err := encodeMultipart(parts)
	if err != nil {
		if errors.Is(err, errFileUnreadable) {
			return nil, &APIError{Endpoint: ep.Name, Message: ep.Fallback, Err: err}
		}
		return nil, fmt.Errorf("failed to encode %s form: %w", ep.Name, err)
	}
	return c.do(ctx, ep, body, contentType)
}
