// Package githubapi implements the gitnotes.Gateway interface on top of the
// GitHub REST API: the Contents API for single-file reads and writes, the
// Git Data API for multi-file commits, and the Commits API for history.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/notehub/gitnotes/log"
	"github.com/notehub/gitnotes/retry"
)

const (
	defaultAPIBase   = "https://api.github.com"
	defaultHTMLBase  = "https://github.com"
	defaultBranch    = "main"
	defaultUserAgent = "gitnotes"
	apiVersion       = "2022-11-28"
)

// Client talks to one repository on one branch. It is safe for concurrent
// use. Client implements gitnotes.Gateway.
type Client struct {
	httpClient *http.Client
	apiBase    *url.URL
	htmlBase   *url.URL
	owner      string
	repo       string
	branch     string
	token      string
	userAgent  string
	limiter    *rate.Limiter
	logger     log.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithToken sets the bearer token used for authentication. Without a token
// only public repositories are readable and all writes fail.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithBranch sets the branch all operations target. Defaults to "main".
func WithBranch(branch string) Option {
	return func(c *Client) error {
		if branch == "" {
			return errors.New("branch cannot be empty")
		}
		c.branch = branch
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithBaseURL overrides the API base URL, e.g. for GitHub Enterprise or a
// test server.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		c.apiBase = u
		return nil
	}
}

// WithHTMLBaseURL overrides the base URL used to build commit links.
func WithHTMLBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse html base url: %w", err)
		}
		c.htmlBase = u
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua == "" {
			return errors.New("user agent cannot be empty")
		}
		c.userAgent = ua
		return nil
	}
}

// WithLogger sets the logger used for request tracing. Defaults to a noop
// logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithRateLimit throttles outgoing requests to rps requests per second with
// the given burst, keeping the client under GitHub's secondary rate limits.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) error {
		if rps <= 0 || burst <= 0 {
			return errors.New("rate limit requires positive rps and burst")
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// New creates a Client for the given repository. Nil options are ignored.
func New(owner, repo string, options ...Option) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("owner and repo are required")
	}

	apiBase, _ := url.Parse(defaultAPIBase)
	htmlBase, _ := url.Parse(defaultHTMLBase)

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    apiBase,
		htmlBase:   htmlBase,
		owner:      owner,
		repo:       repo,
		branch:     defaultBranch,
		userAgent:  defaultUserAgent,
		logger:     log.Noop{},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s %s: %d", e.Method, e.Path, e.StatusCode)
}

// HTTPStatus implements retry.HTTPStatusError so transient 5xx responses are
// retried while 4xx responses surface immediately.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// statusOf returns the HTTP status behind err, or 0 if err is not an APIError.
func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// repoPath builds /repos/{owner}/{repo}/<suffix> with each repository path
// segment escaped.
func (c *Client) repoPath(suffix string, segments ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/repos/%s/%s/%s", url.PathEscape(c.owner), url.PathEscape(c.repo), suffix)
	for _, seg := range segments {
		for _, part := range strings.Split(seg, "/") {
			b.WriteByte('/')
			b.WriteString(url.PathEscape(part))
		}
	}
	return b.String()
}

// do performs one API request with rate limiting and context-driven retries.
// body is JSON-encoded when non-nil; a 2xx response is decoded into out when
// out is non-nil. Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	u := *c.apiBase
	u.Path = strings.TrimSuffix(u.Path, "/") + apiPath
	if query != nil {
		u.RawQuery = query.Encode()
	}

	data, err := retry.Do(ctx, func() ([]byte, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		return c.roundTrip(ctx, method, &u, apiPath, payload)
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response for %s %s: %w", method, apiPath, err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method string, u *url.URL, apiPath string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, apiPath, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s %s: %w", method, apiPath, err)
	}

	c.logger.Debug("github api request",
		"method", method,
		"path", apiPath,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       apiPath,
		}
		var ghErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &ghErr) == nil {
			apiErr.Message = ghErr.Message
		}
		return nil, apiErr
	}
	return data, nil
}
