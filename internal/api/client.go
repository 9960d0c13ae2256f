// Package api is the client for the remote finance REST API. The API owns every
// financial record; this package only moves JSON and maps failures onto
// ErrNotAuthenticated, *NetworkError and *HTTPError. Nothing is retried.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"financas/internal/session"
)

const maxErrorBody = 4 << 10

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	base      *url.URL
	timeout   time.Duration
	transport http.RoundTripper
}

func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api: empty base URL")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", base.Scheme)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{base: base, timeout: timeout, transport: newTransport()}, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// httpClient returns a client for ctx. Authenticated clients wrap the transport
// so every request carries the session's bearer token.
func (c *Client) httpClient(ctx context.Context, authed bool) (*http.Client, error) {
	if !authed {
		return &http.Client{Transport: c.transport, Timeout: c.timeout}, nil
	}
	s, ok := session.FromContext(ctx)
	if !ok || s.Token == "" {
		return nil, ErrNotAuthenticated
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.Token, TokenType: "Bearer"})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.transport},
		Timeout:   c.timeout,
	}, nil
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
	authed bool
}

func (c *Client) do(ctx context.Context, cl call) error {
	hc, err := c.httpClient(ctx, cl.authed)
	if err != nil {
		return fmt.Errorf("%s: %w", cl.op, err)
	}

	u := c.base.ResolveReference(&url.URL{Path: cl.path})
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Remote API request failed", "component", "api", "operation", cl.op, "error", err)
		return &NetworkError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()
	slog.DebugContext(ctx, "Remote API request",
		"component", "api",
		"operation", cl.op,
		"method", cl.method,
		"path", cl.path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized && cl.authed {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: %w", cl.op, ErrNotAuthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(cl.op, resp)
	}
	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

func newHTTPError(op string, resp *http.Response) *HTTPError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		switch {
		case payload.Error != "":
			e.Message = payload.Error
		case payload.Detail != "":
			e.Message = payload.Detail
		case payload.Message != "":
			e.Message = payload.Message
		}
	}
	return e
}
