// Package client talks to the Oracle Service Cloud Connect REST API.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// APIRootPath is the REST API root relative to the server URL.
const APIRootPath = "services/rest/connect/v1.4/"

// ApplicationContextHeader identifies the calling application to Oracle.
const ApplicationContextHeader = "OSvC-CREST-Application-Context"

const (
	defaultPageSize  = 1000
	defaultTimeout   = 30 * time.Second
	defaultRetryWait = 500 * time.Millisecond
	maxErrorBody     = 4096
)

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	Authenticate(req *http.Request)
}

// AuthFunc adapts a function to Authenticator.
type AuthFunc func(req *http.Request)

func (f AuthFunc) Authenticate(req *http.Request) { f(req) }

// BasicAuth authenticates with a username and password.
func BasicAuth(username, password string) Authenticator {
	return AuthFunc(func(req *http.Request) { req.SetBasicAuth(username, password) })
}

// SessionAuth authenticates with an existing Service Cloud session.
func SessionAuth(sessionID string) Authenticator {
	return AuthFunc(func(req *http.Request) { req.Header.Set("Authorization", "Session "+sessionID) })
}

// BearerAuth authenticates with an OAuth access token.
func BearerAuth(token string) Authenticator {
	return AuthFunc(func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) })
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	ServerURL          string
	Auth               Authenticator
	ApplicationContext string
	PageSize           int
	Timeout            time.Duration
	HTTPClient         *http.Client
	Logger             *slog.Logger
	// Retries is the number of extra attempts for 429 and 5xx responses.
	Retries   int
	RetryWait time.Duration
}

// Client issues GET requests against one Service Cloud site.
type Client struct {
	root      *url.URL
	auth      Authenticator
	appCtx    string
	pageSize  int
	http      *http.Client
	logger    *slog.Logger
	retries   int
	retryWait time.Duration
}

// New validates the options and returns a client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.ServerURL, "/") + "/")
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("client: invalid server URL %q", opts.ServerURL)
	}
	root, err := base.Parse(APIRootPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	c := &Client{
		root:      root,
		auth:      opts.Auth,
		appCtx:    opts.ApplicationContext,
		pageSize:  opts.PageSize,
		http:      opts.HTTPClient,
		logger:    opts.Logger,
		retries:   max(opts.Retries, 0),
		retryWait: opts.RetryWait,
	}
	if c.appCtx == "" {
		c.appCtx = "oscconnect"
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.retryWait <= 0 {
		c.retryWait = defaultRetryWait
	}
	return c, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: GET %s: http %d: %s", e.URL, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func (c *Client) endpoint(resource string, query url.Values) string {
	u := c.root.JoinPath(resource)
	u.RawQuery = query.Encode()
	return u.String()
}

// get performs one GET with retries and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.retryWait
			c.logger.WarnContext(ctx, "retrying request", "url", endpoint, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		body, err := c.do(ctx, endpoint)
		if err == nil {
			dec := json.NewDecoder(bytes.NewReader(body))
			dec.UseNumber()
			if err := dec.Decode(out); err != nil {
				return fmt.Errorf("client: decode response from %s: %w", endpoint, err)
			}
			return nil
		}
		lastErr = err
		var se *StatusError
		if !errors.As(err, &se) || !se.Temporary() {
			return err
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(ApplicationContextHeader, c.appCtx)
	if c.auth != nil {
		c.auth.Authenticate(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.logger.DebugContext(ctx, "oracle service cloud request", "url", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: endpoint, Body: strings.TrimSpace(string(b))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read body: %w", err)
	}
	return data, nil
}
