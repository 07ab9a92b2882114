// Package remote talks to the geometry extraction service used for CAD
// formats the engine cannot read itself.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/piwi3910/partquote/internal/metrics"
	"github.com/piwi3910/partquote/internal/model"
	"go.uber.org/zap"
)

// DefaultTimeout bounds one extraction request.
const DefaultTimeout = 30 * time.Second

// maxResponse caps the summary body read from the service.
const maxResponse = 1 << 20

// ErrNotConfigured is wrapped when no service URL is set.
var ErrNotConfigured = errors.New("remote extraction service not configured")

// RemoteServiceError reports an unreachable service or a non-OK response.
// StatusCode is zero when no response arrived.
type RemoteServiceError struct {
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote extraction failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote extraction failed: %v", e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// Client posts CAD files to the extraction service.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
	log     *zap.Logger
	metrics *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// WithMetrics records call outcomes.
func WithMetrics(m *metrics.Recorder) Option { return func(c *Client) { c.metrics = m } }

// New creates a client from the persisted remote settings.
func New(cfg model.RemoteConfig, opts ...Option) *Client {
	c := &Client{
		url:     cfg.URL,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a service URL is configured.
func (c *Client) Enabled() bool { return c != nil && c.url != "" }

// Extract posts the file bytes and decodes the returned summary. Every
// failure is a *RemoteServiceError.
func (c *Client) Extract(ctx context.Context, name string, data []byte) (*model.RemoteSummary, error) {
	if !c.Enabled() {
		return nil, &RemoteServiceError{Err: ErrNotConfigured}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := url.Parse(c.url)
	if err != nil {
		return nil, c.fail("error", &RemoteServiceError{Err: fmt.Errorf("parsing service url: %w", err)})
	}
	q := target.Query()
	q.Set("filename", filepath.Base(name))
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(data))
	if err != nil {
		return nil, c.fail("error", &RemoteServiceError{Err: err})
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		status := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		return nil, c.fail(status, &RemoteServiceError{Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, c.fail("error", &RemoteServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(statusClass(resp.StatusCode), &RemoteServiceError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response %q", truncate(string(body), 200)),
		})
	}

	var s model.RemoteSummary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, c.fail("error", &RemoteServiceError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding summary: %w", err)})
	}
	if s.Volume < 0 || s.SurfaceArea < 0 {
		return nil, c.fail("error", &RemoteServiceError{StatusCode: resp.StatusCode, Err: errors.New("negative volume or area in summary")})
	}

	c.metrics.RecordRemoteCall("ok")
	c.log.Debug("remote extraction complete",
		zap.String("file", name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Float64("volume", s.Volume))
	return &s, nil
}

func (c *Client) fail(status string, err *RemoteServiceError) error {
	c.metrics.RecordRemoteCall(status)
	return err
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
