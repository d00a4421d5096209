// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/staranto/smctl/internal/cacheutil"
	"github.com/staranto/smctl/internal/dialog"
	"github.com/staranto/smctl/internal/token"
)

const (
	// Prefix is the path every backend endpoint lives under.
	Prefix = "/api/v0/"
	// DefaultBaseURL is the public Sci-ModoM instance.
	DefaultBaseURL = "https://scimodom.dieterichlab.org" + Prefix

	defaultRetryMax = 2
)

// Client talks to the backend. Calls made with reporting push their errors
// into the dialog state.
type Client struct {
	base   string
	http   *retryablehttp.Client
	tokens *token.Store
	dialog *dialog.State
	disk   *cacheutil.Store
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http.HTTPClient = hc }
}

// WithRetries sets the retry policy for 5xx responses and connection errors.
// Only idempotent requests are ever retried.
func WithRetries(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = maxRetries
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithResponseCache keeps responses of public catalog endpoints on disk.
func WithResponseCache(store *cacheutil.Store) Option {
	return func(c *Client) { c.disk = store }
}

// New returns a client for baseURL. tokens and state may be shared with
// other clients. The store is wired to refresh through this client.
func New(baseURL string, tokens *token.Store, state *dialog.State, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if tokens == nil {
		tokens = token.New()
	}
	if state == nil {
		state = dialog.New()
	}

	rc := retryablehttp.NewClient()
	rc.Logger = retryLogger{}
	rc.RetryMax = defaultRetryMax
	rc.CheckRetry = checkRetry
	// Keep the last response so its body can be normalized.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		base:   baseURL,
		http:   rc,
		tokens: tokens,
		dialog: state,
	}
	for _, opt := range opts {
		opt(c)
	}
	tokens.SetRefresher(c.refreshAccessToken)
	return c
}

// BaseURL returns the API root, always with a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// URL returns the absolute URL of endpoint.
func (c *Client) URL(endpoint string) string {
	return c.base + strings.TrimPrefix(endpoint, "/")
}

// Tokens returns the access-token store.
func (c *Client) Tokens() *token.Store {
	return c.tokens
}

// Dialog returns the dialog state errors are reported to.
func (c *Client) Dialog() *dialog.State {
	return c.dialog
}

// Payload is a file body. Open is called once per attempt.
type Payload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// call describes one backend request. Cacheable responses may be served
// from the disk cache.
type call struct {
	method    string
	endpoint  string
	params    any
	body      any
	secure    bool
	errCtx    string
	report    bool
	patches   []dialog.Patch
	cacheable bool
}

// run performs cl and decodes a 200 response into out (if non-nil).
func (c *Client) run(ctx context.Context, cl call, out any) error {
	if cl.secure {
		if err := c.prepare(ctx, true); err != nil {
			return err
		}
	}

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}

	key := req.Method + " " + req.URL.String()
	if cl.cacheable && c.disk != nil {
		if data, ok := c.disk.Get(key); ok {
			log.Debugf("disk cache hit for %s", key)
			return decode(cl.errCtx, data, out)
		}
	}

	data, err := c.do(req, cl.errCtx)
	if err == nil {
		err = decode(cl.errCtx, data, out)
	}
	if err != nil {
		if cl.report {
			return Report(c.dialog, err, cl.patches...)
		}
		return err
	}

	if cl.cacheable && c.disk != nil {
		if err := c.disk.Put(key, data); err != nil {
			log.WithError(err).Warn("failed to write response cache")
		}
	}
	return nil
}

// prepare asks for a login when auth is required but no token exists, then
// considers refreshing the token.
func (c *Client) prepare(ctx context.Context, authRequired bool) error {
	if authRequired && c.tokens.Token() == "" {
		c.dialog.Show(dialog.Login, NotLoggedInMessage)
		return ErrNotLoggedIn
	}
	c.tokens.ConsiderRefresh(ctx)
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*retryablehttp.Request, error) {
	u := c.URL(cl.endpoint)
	if cl.params != nil {
		values, err := encodeParams(cl.params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query for %s: %w", cl.endpoint, err)
		}
		if enc := values.Encode(); enc != "" {
			u += "?" + enc
		}
	}

	var (
		raw         any
		contentType string
		size        int64 = -1
	)
	switch b := cl.body.(type) {
	case nil:
	case *Payload:
		raw = retryablehttp.ReaderFunc(func() (io.Reader, error) { return b.Open() })
		contentType = "application/octet-stream"
		size = b.Size
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body for %s: %w", cl.endpoint, err)
		}
		raw = bytes.NewReader(data)
		contentType = "application/json"
	}

	ctx = context.WithValue(ctx, methodKey{}, cl.method)
	req, err := retryablehttp.NewRequestWithContext(ctx, cl.method, u, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", cl.endpoint, err)
	}
	if size >= 0 {
		req.ContentLength = size
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cl.secure {
		if t := c.tokens.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	return req, nil
}

// do sends req and normalizes every failure into a *RequestError. It returns
// the body of a 200 response.
func (c *Client) do(req *retryablehttp.Request, errCtx string) ([]byte, error) {
	log.Debugf("%s %s", req.Method, req.URL.Redacted())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(errCtx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(errCtx, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(errCtx, resp.StatusCode, data)
	}
	return data, nil
}

func decode(errCtx string, data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportError(errCtx, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// encodeParams accepts url.Values or a struct with url tags.
func encodeParams(params any) (url.Values, error) {
	if v, ok := params.(url.Values); ok {
		return v, nil
	}
	return query.Values(params)
}

func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	var resp accessTokenResponse
	err := c.run(ctx, call{
		method:   http.MethodGet,
		endpoint: "user/refresh_access_token",
		secure:   true,
		errCtx:   "Failed to refresh access token",
	}, &resp)
	return resp.AccessToken, err
}

type methodKey struct{}

// checkRetry applies the default policy to GET, HEAD and DELETE. Anything
// else may already have changed state on the backend, so it is sent once.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	method, _ := ctx.Value(methodKey{}).(string)
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

// retryLogger routes retryablehttp's leveled logging into apex/log.
type retryLogger struct{}

func (retryLogger) entry(keysAndValues []any) *log.Entry {
	fields := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return log.WithFields(fields)
}

func (l retryLogger) Error(msg string, keysAndValues ...any) { l.entry(keysAndValues).Error(msg) }
func (l retryLogger) Warn(msg string, keysAndValues ...any)  { l.entry(keysAndValues).Warn(msg) }
func (l retryLogger) Info(msg string, keysAndValues ...any)  { l.entry(keysAndValues).Debug(msg) }
func (l retryLogger) Debug(msg string, keysAndValues ...any) { l.entry(keysAndValues).Debug(msg) }
