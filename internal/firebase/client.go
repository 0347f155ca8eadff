// Package firebase is a small client for Firebase HTTPS callable functions.
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nfrund/plug/internal/config"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrEmulatorAlreadyConnected is returned when ConnectEmulator is called twice.
	ErrEmulatorAlreadyConnected = errors.New("functions emulator already connected")
	// ErrNotConfigured is returned by Call when no project ID is set.
	ErrNotConfigured = errors.New("firebase project is not configured")
)

// CallError is the error a callable function reported.
type CallError struct {
	Function   string
	HTTPStatus int
	// Status is the canonical code, e.g. "INVALID_ARGUMENT" or "INTERNAL".
	Status  string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("function %s failed with %s (%d): %s", e.Function, e.Status, e.HTTPStatus, e.Message)
}

type callRequest struct {
	Data any `json:"data"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error *struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = resty.NewWithClient(hc) }
}

// WithBaseURL points the client at a fixed base URL instead of the one
// derived from the project and region.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// Client calls HTTPS callable functions of one Firebase project.
type Client struct {
	http      *resty.Client
	projectID string
	region    string
	apiKey    string
	logger    *slog.Logger

	mu       sync.RWMutex
	baseURL  string
	emulator string
}

// NewClient creates a client for the project in cfg.
func NewClient(cfg config.Firebase, opts ...Option) *Client {
	region := cfg.Region
	if region == "" {
		region = config.DefaultRegion
	}
	c := &Client{
		http:      resty.New(),
		projectID: cfg.ProjectID,
		region:    region,
		apiKey:    cfg.APIKey,
		logger:    slog.Default().With("component", "firebase_functions"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return c
}

// ProjectID returns the configured project.
func (c *Client) ProjectID() string { return c.projectID }

// ConnectEmulator routes every following call to a local functions emulator.
// It can only be called once.
func (c *Client) ConnectEmulator(host string, port int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.emulator != "" {
		return ErrEmulatorAlreadyConnected
	}
	if host == "" || port <= 0 {
		return fmt.Errorf("invalid emulator address %q:%d", host, port)
	}
	c.emulator = "http://" + host + ":" + strconv.Itoa(port)
	c.logger.Info("Connected to functions emulator", "address", c.emulator)
	return nil
}

// EmulatorConnected reports whether calls go to the emulator.
func (c *Client) EmulatorConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.emulator != ""
}

// FunctionURL returns the endpoint of the named function.
func (c *Client) FunctionURL(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.baseURL != "":
		return c.baseURL + "/" + name
	case c.emulator != "":
		return fmt.Sprintf("%s/%s/%s/%s", c.emulator, c.projectID, c.region, name)
	default:
		return fmt.Sprintf("https://%s-%s.cloudfunctions.net/%s", c.region, c.projectID, name)
	}
}

// Call invokes the named function with data and decodes its result into
// result, which may be nil. Errors reported by the function are returned as
// *CallError.
func (c *Client) Call(ctx context.Context, name string, data any, result any) error {
	if c.projectID == "" {
		return ErrNotConfigured
	}

	var (
		ok  callResponse
		bad errorResponse
	)
	req := c.http.R().
		SetContext(ctx).
		SetBody(callRequest{Data: data}).
		SetResult(&ok).
		SetError(&bad)
	if c.apiKey != "" {
		req.SetQueryParam("key", c.apiKey)
	}

	url := c.FunctionURL(name)
	resp, err := req.Post(url)
	if err != nil {
		return fmt.Errorf("call %s: %w", name, err)
	}

	if resp.IsError() {
		callErr := &CallError{
			Function:   name,
			HTTPStatus: resp.StatusCode(),
			Status:     "UNKNOWN",
			Message:    http.StatusText(resp.StatusCode()),
		}
		if bad.Error != nil {
			callErr.Status = bad.Error.Status
			callErr.Message = bad.Error.Message
		}
		c.logger.Debug("Callable function returned an error", "function", name, "status", callErr.Status, "http_status", callErr.HTTPStatus)
		return callErr
	}

	if result == nil || len(ok.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(ok.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", name, err)
	}
	return nil
}
