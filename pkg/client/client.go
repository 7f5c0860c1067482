// Package client provides the HTTP base client shared by every AgentFlow
// API surface: bearer-token injection, JSON bodies, error-detail
// extraction and the 401 credential side-effect.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentflow-ai/agentflow-go/pkg/errx"
	"github.com/agentflow-ai/agentflow-go/pkg/logx"
)

// DefaultBasePath is prepended to request paths.
const DefaultBasePath = "/api/v1"

// CredentialSource supplies the bearer token for authenticated requests.
// Token returns "" when unauthenticated. Clear drops the stored credential;
// the client calls it once on any 401 response.
type CredentialSource interface {
	Token() string
	Clear()
}

// Client is the AgentFlow REST client.
type Client struct {
	baseURL        string
	basePath       string
	http           *http.Client
	creds          CredentialSource
	onUnauthorized func()
	log            *logx.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCredentials sets the credential source for bearer auth
func WithCredentials(creds CredentialSource) Option {
	return func(c *Client) { c.creds = creds }
}

// WithUnauthorizedHook registers a callback fired after a 401 response has
// cleared the credential (the CLI uses it to point the user at login).
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithBasePath overrides the default /api/v1 prefix
func WithBasePath(p string) Option {
	return func(c *Client) { c.basePath = p }
}

// New creates a client for the given platform base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		basePath: DefaultBasePath,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      logx.WithField("component", "client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL resolves an API path against the base URL.
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + c.basePath + path
}

// NewRequest builds an authenticated request with a JSON body. body may be
// nil, an io.Reader (sent as-is) or any value to marshal.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, errorRegistry.WrapWith(ErrRequest, err)
		}
		reader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrRequest, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// Do sends a JSON request and decodes a 2xx response body into out (out may
// be nil). Non-2xx responses become errx errors carrying the body's detail
// field when present.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errorRegistry.WrapWith(ErrRequest, err)
	}
	defer resp.Body.Close()

	if err := c.CheckStatus(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorRegistry.WrapWith(ErrResponse, err)
	}
	return nil
}

// Get issues a GET with optional query values.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Upload sends one file as a multipart/form-data request.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile(field, filename)
	if err != nil {
		return errorRegistry.WrapWith(ErrRequest, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return errorRegistry.WrapWith(ErrRequest, err)
	}
	if err := form.Close(); err != nil {
		return errorRegistry.WrapWith(ErrRequest, err)
	}

	req, err := c.NewRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return errorRegistry.WrapWith(ErrRequest, err)
	}
	defer resp.Body.Close()

	if err := c.CheckStatus(resp); err != nil {
		return err
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorRegistry.WrapWith(ErrResponse, err)
	}
	return nil
}

// OpenStream sends a POST and hands back the raw response for SSE
// consumption. Status checking (including the 401 side-effect) has already
// happened; the caller owns resp.Body.
func (c *Client) OpenStream(ctx context.Context, path string, body any) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	// Streams are bounded by the caller's watchdog, not a client timeout.
	httpClient := &http.Client{Transport: c.http.Transport}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errorRegistry.WrapWith(ErrRequest, err)
	}
	if err := c.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// CheckStatus turns a non-2xx response into an errx error. 401 responses
// additionally clear the stored credential and fire the unauthorized hook
// before the error is synthesized.
func (c *Client) CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	detail := readErrorDetail(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn("request unauthorized, clearing stored credential")
		if c.creds != nil {
			c.creds.Clear()
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return errorRegistry.NewWithMessage(ErrUnauthorized, detail)
	}

	return errorRegistry.NewWithMessage(ErrStatus, detail).
		WithDetail("status", resp.StatusCode)
}

// readErrorDetail extracts the backend's detail field, falling back to a
// generic status message when the body is not JSON.
func readErrorDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil {
		var parsed struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
			return parsed.Detail
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", resp.StatusCode)
}

// IsUnauthorized reports whether err is the 401 client error.
func IsUnauthorized(err error) bool {
	return errx.IsType(err, errx.TypeAuthorization)
}
