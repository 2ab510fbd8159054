// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package client is the REST API client for the chat server.  It
// implements the history and read marker interfaces of the dialog.
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
	"net/http/cookiejar"
	"net/url"
	"runtime/trace"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/rusq/chatdialog/chattime"
	"github.com/rusq/chatdialog/dialog"
	"github.com/rusq/chatdialog/internal/network"
)

// ErrUnauthorized is returned when the session is not authenticated.
var ErrUnauthorized = errors.New("unauthorized")

const userAgent = "chatdialog/1.0"

// Client is the REST API client.
type Client struct {
	cl      *http.Client
	baseURL *url.URL
	limiter *rate.Limiter
	retries int
	lg      *slog.Logger
}

var _ dialog.API = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.  The cookie jar is added if the
// client doesn't have one.
func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		if cl != nil {
			c.cl = cl
		}
	}
}

// WithLimits sets the rate limits and the number of retries.
func WithLimits(l network.Limits) Option {
	return func(c *Client) {
		c.limiter = l.Limiter()
		c.retries = l.Retries
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// New creates a new Client for the server at baseURL, i.e.
// "http://localhost:3000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: unsupported scheme", baseURL)
	}
	u.Path, u.RawPath = "/"+strings.Trim(u.Path, "/"), ""

	c := &Client{
		cl:      &http.Client{},
		baseURL: u,
		limiter: network.DefLimits.Limiter(),
		retries: network.DefLimits.Retries,
		lg:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cl.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		c.cl.Jar = jar
	}
	tr := newTransport(c.cl.Transport)
	tr.BeforeReq = func(req *http.Request) {
		req.Header.Set("User-Agent", userAgent)
	}
	tr.AfterReq = func(resp *http.Response, req *http.Request) {
		c.lg.DebugContext(req.Context(), "api call", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
	}
	c.cl.Transport = tr
	return c, nil
}

// Raw returns the underlying HTTP client.
func (c *Client) Raw() *http.Client {
	return c.cl
}

// endpoint returns the URL for the API path elements.  Elements are
// path-escaped.
func (c *Client) endpoint(elem ...string) *url.URL {
	esc := make([]string, 0, len(elem)+1)
	esc = append(esc, "api")
	for _, e := range elem {
		esc = append(esc, url.PathEscape(e))
	}
	return c.baseURL.JoinPath(esc...)
}

// dialogPath returns the path elements of the dialog.  Connection level
// dialogs have no dialog ID.
func dialogPath(connectionID, dialogID string, elem ...string) []string {
	p := []string{"connection", connectionID}
	if dialogID != "" {
		p = append(p, "dialog", dialogID)
	}
	return append(p, elem...)
}

// do sends the request with retries and decodes the JSON response into v,
// if v is not nil.
func (c *Client) do(ctx context.Context, method string, u *url.URL, body any, v any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return err
		}
	}
	return network.WithRetry(ctx, c.limiter, c.retries, func() error {
		var rdr io.Reader
		if data != nil {
			rdr = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.cl.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		if err := network.CheckResponse(resp); err != nil {
			return err
		}
		if v == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode %s: %w", u.Path, err)
		}
		return nil
	})
}

// Login authenticates the session with the email and password.  The session
// cookie is stored in the client cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	ctx, task := trace.NewTask(ctx, "Login")
	defer task.End()

	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	if err := c.do(ctx, http.MethodPost, c.endpoint("user", "login"), body, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.lg.DebugContext(ctx, "logged in", "email", email)
	return nil
}

// Dialogs returns the dialogs of the user.
func (c *Client) Dialogs(ctx context.Context) ([]dialog.Info, error) {
	ctx, task := trace.NewTask(ctx, "Dialogs")
	defer task.End()

	var resp struct {
		Dialogs []dialog.Info `json:"dialogs"`
	}
	if err := c.do(ctx, http.MethodGet, c.endpoint("dialogs"), nil, &resp); err != nil {
		return nil, fmt.Errorf("dialogs: %w", err)
	}
	return resp.Dialogs, nil
}

// FetchHistory returns the page of the dialog messages.
func (c *Client) FetchHistory(ctx context.Context, req dialog.HistoryRequest) (*dialog.HistoryResponse, error) {
	ctx, task := trace.NewTask(ctx, "FetchHistory")
	defer task.End()

	u := c.endpoint(dialogPath(req.ConnectionID, req.DialogID, "messages")...)
	if req.Before != "" {
		u.RawQuery = url.Values{"before": []string{req.Before}}.Encode()
	}
	var resp dialog.HistoryResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return &resp, nil
}

// MarkRead marks the dialog as read.
func (c *Client) MarkRead(ctx context.Context, connectionID, dialogID string) (*dialog.ReadResponse, error) {
	ctx, task := trace.NewTask(ctx, "MarkRead")
	defer task.End()

	var resp struct {
		LastRead chattime.Time `json:"last_read"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoint(dialogPath(connectionID, dialogID, "read")...), nil, &resp); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return &dialog.ReadResponse{LastRead: resp.LastRead.T()}, nil
}

// EventsURL returns the websocket URL of the event stream.
func (c *Client) EventsURL() string {
	u := c.endpoint("events")
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String()
}
