// Copyright (c) 2026 SKM Team
// skm - terminal client for the SSH Key Manager service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package api issues authenticated requests against the SSH Key Manager
// service and normalizes its inconsistent response shapes. The backend's
// revisions disagree on whether payloads are wrapped in a "data" envelope;
// the gateway resolves that through an explicit per-endpoint unwrap table
// instead of per-call guesswork.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gphunter1004/skm/internal/logging"
)

// UnwrapMode selects how a 2xx response body maps to the payload handed to
// controllers.
type UnwrapMode string

const (
	// UnwrapRaw returns the body as-is. The key endpoints return their
	// record at the top level.
	UnwrapRaw UnwrapMode = "raw"
	// UnwrapData requires a {"data": ...} envelope and returns its content.
	UnwrapData UnwrapMode = "data"
	// UnwrapAuto returns body.data when the field is present, else the raw
	// body. This is the defensive default for endpoints whose envelope
	// varies across backend revisions.
	UnwrapAuto UnwrapMode = "auto"
)

// DefaultUnwrapModes is the most defensive rule observed across backend
// revisions: key endpoints are unwrapped raw, everything else auto.
func DefaultUnwrapModes() map[string]UnwrapMode {
	return map[string]UnwrapMode{
		"/keys": UnwrapRaw,
	}
}

// ParseUnwrapModes converts a configured path-to-mode table into typed
// modes, layered over the defaults. Unknown mode names are rejected.
func ParseUnwrapModes(raw map[string]string) (map[string]UnwrapMode, error) {
	modes := DefaultUnwrapModes()
	for path, name := range raw {
		switch UnwrapMode(name) {
		case UnwrapRaw, UnwrapData, UnwrapAuto:
			modes[path] = UnwrapMode(name)
		default:
			return nil, fmt.Errorf("unknown unwrap mode %q for %q", name, path)
		}
	}
	return modes, nil
}

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Gateway issues requests and normalizes failures. When a request that
// carried a token comes back 401/403, the gateway invokes the injected
// unauthorized hook before returning the error, so an expired session is
// torn down no matter which consumer discovered it.
type Gateway struct {
	base           string
	client         *http.Client
	tokens         TokenSource
	unwrap         map[string]UnwrapMode
	onUnauthorized func()
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithUnwrapModes overrides the per-endpoint unwrap table. Keys are path
// prefixes; the longest matching prefix wins.
func WithUnwrapModes(modes map[string]UnwrapMode) Option {
	return func(g *Gateway) { g.unwrap = modes }
}

// WithUnauthorizedHook installs the forced-logout callback invoked on
// 401/403 responses to authenticated requests.
func WithUnauthorizedHook(hook func()) Option {
	return func(g *Gateway) { g.onUnauthorized = hook }
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.client.Timeout = d }
}

// New creates a gateway for the service at baseURL (e.g.
// "http://host:8080/api").
func New(baseURL string, tokens TokenSource, opts ...Option) *Gateway {
	g := &Gateway{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
		unwrap: DefaultUnwrapModes(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do sends one request and returns the unwrapped JSON payload. body, when
// non-nil, is marshalled as the JSON request body. Every failure comes back
// as an *Error carrying the taxonomy Kind.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Status: 0, Message: "network", Kind: KindNetwork}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return nil, &Error{Status: 0, Message: "network", Kind: KindNetwork}
	}
	req.Header.Set("Content-Type", "application/json")

	token := ""
	if g.tokens != nil {
		token = g.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		logging.Debugf("api: %s %s transport failure: %v", method, path, err)
		return nil, &Error{Status: 0, Message: "network", Kind: KindNetwork}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: 0, Message: "network", Kind: KindNetwork}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Status:  resp.StatusCode,
			Message: errorMessage(data, resp.StatusCode),
			Kind:    kindForStatus(resp.StatusCode),
		}
		if apiErr.Kind == KindAuth && token != "" && g.onUnauthorized != nil {
			// Session invalidation happens before the caller sees the
			// error: any consumer may be the one to discover expiry.
			logging.Debugf("api: %s %s returned %d, invalidating session", method, path, resp.StatusCode)
			g.onUnauthorized()
		}
		return nil, apiErr
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &Error{Status: 0, Message: "network", Kind: KindNetwork}
	}
	return g.unwrapBody(path, data), nil
}

// unwrapBody applies the configured unwrap mode for the endpoint.
func (g *Gateway) unwrapBody(path string, data []byte) json.RawMessage {
	mode := g.modeFor(path)
	if mode == UnwrapRaw {
		return data
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return envelope.Data
	}
	if mode == UnwrapData {
		// A required envelope that is missing degrades to the raw body
		// rather than failing the render path.
		logging.Warnf("api: %s configured for data envelope but none present", path)
	}
	return data
}

// modeFor resolves the unwrap mode by longest path-prefix match.
func (g *Gateway) modeFor(path string) UnwrapMode {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	best := ""
	mode := UnwrapAuto
	for prefix, m := range g.unwrap {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
			mode = m
		}
	}
	return mode
}

// errorMessage extracts the server's message field from an error payload,
// falling back to a synthesized "HTTP <status>".
func errorMessage(data []byte, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}
