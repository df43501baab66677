// Package remote talks to the remote table store: one whole-dataset read
// (GET) and one whole-collection write (POST) against a single endpoint.
//
// Every failure is returned as a classified apperror so the coordinator can
// fall back without inspecting transport details:
//
//	unset endpoint              → apperror.ErrConfigurationMissing
//	read failed in any way      → apperror.ErrRemoteUnavailable
//	write failed in any way     → apperror.ErrRemoteWriteFailed
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/schema"
)

// PlaceholderEndpoint is the value shipped in sample configs before a real
// endpoint is deployed. It counts as "not configured".
const PlaceholderEndpoint = "YOUR_APPS_SCRIPT_WEB_APP_URL_HERE"

// DefaultTimeout bounds every remote call. There is no other cancellation.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// Configured reports whether endpoint is usable: non-empty and not the
// placeholder.
func Configured(endpoint string) bool {
	endpoint = strings.TrimSpace(endpoint)
	return endpoint != "" && endpoint != PlaceholderEndpoint
}

// Client is the remote store adapter.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client (tests use the one from
// httptest.Server).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. It works on a copy of the
// installed *http.Client, so a shared client such as http.DefaultClient is
// left alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// New creates a Client. An unconfigured endpoint is allowed; every call on
// such a client returns ErrConfigurationMissing.
func New(endpoint string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSpace(endpoint),
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client has a usable endpoint.
func (c *Client) Configured() bool {
	return Configured(c.endpoint)
}

// fetchResponse is the GET body. Records are decoded loosely: the table
// store may hand back numbers, booleans or nulls in any cell.
type fetchResponse struct {
	Users         []map[string]any `json:"users"`
	Payments      []map[string]any `json:"payments"`
	Issues        []map[string]any `json:"issues"`
	Notifications []map[string]any `json:"notifications"`
	Error         string           `json:"error"`
}

// writeResponse is the POST body. It may be unreadable; that is not a failure.
type writeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FetchAll reads every collection in one GET. Records come back through the
// schema row mapping: blank rows (empty identity) are dropped and missing
// fields read as "".
func (c *Client) FetchAll(ctx context.Context) (model.Dataset, error) {
	if !c.Configured() {
		return model.Dataset{}, apperror.ConfigurationMissing("remote endpoint")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return model.Dataset{}, apperror.RemoteUnavailable(err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching remote dataset", slog.String("endpoint", c.endpoint))

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Dataset{}, apperror.RemoteUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Dataset{}, apperror.RemoteUnavailable(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body fetchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return model.Dataset{}, apperror.RemoteUnavailable(fmt.Errorf("decoding response: %w", err))
	}
	if body.Error != "" {
		return model.Dataset{}, apperror.RemoteUnavailable(fmt.Errorf("store reported: %s", body.Error))
	}

	d := model.Dataset{
		Users:         parseObjects[model.User](model.Users, body.Users),
		Payments:      parseObjects[model.Payment](model.Payments, body.Payments),
		Issues:        parseObjects[model.Issue](model.Issues, body.Issues),
		Notifications: parseObjects[model.Notification](model.Notifications, body.Notifications),
	}
	d.Normalize()

	c.logger.Info("remote dataset fetched",
		slog.Int("users", len(d.Users)),
		slog.Int("payments", len(d.Payments)),
		slog.Int("issues", len(d.Issues)),
		slog.Int("notifications", len(d.Notifications)),
	)
	return d, nil
}

func parseObjects[R any, P interface {
	*R
	model.Record
}](c model.Collection, objs []map[string]any) []R {
	fields := schema.MustFor(c)
	rows := make([]schema.Row, 0, len(objs))
	for _, obj := range objs {
		rows = append(rows, schema.RowFromObject(fields, obj))
	}
	return schema.ParseAll[R, P](fields, rows)
}

// ReplaceAll overwrites, remotely, every collection present in s. Collections
// left nil in s are not sent and stay untouched on the remote side.
//
// The store's answer is read best-effort: an explicit {success:false} is a
// failure, an empty or unparsable body is not.
func (c *Client) ReplaceAll(ctx context.Context, s model.Subset) error {
	if !c.Configured() {
		return apperror.ConfigurationMissing("remote endpoint")
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return apperror.RemoteWriteFailed(fmt.Errorf("encoding payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return apperror.RemoteWriteFailed(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.RemoteWriteFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperror.RemoteWriteFailed(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body writeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err == nil && !body.Success && body.Error != "" {
		return apperror.RemoteWriteFailed(fmt.Errorf("store reported: %s", body.Error))
	}

	c.logger.Info("remote dataset replaced",
		slog.Any("collections", s.Names()),
		slog.Int("bytes", len(payload)),
	)
	return nil
}
