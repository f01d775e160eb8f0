// Package httpclient is a small JSON client for REST APIs that answer with the
// {data, success, message} envelope. Each attempt runs under its own timeout
// and only transport failures (network errors, timeouts) are retried.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clean-starter/pkg/result"
)

var (
	requestsTotal = expvar.NewInt("httpclient_requests_total")
	retriesTotal  = expvar.NewInt("httpclient_retries_total")
	failuresTotal = expvar.NewInt("httpclient_failures_total")
)

// Config holds client settings.
type Config struct {
	BaseURL       string
	Timeout       time.Duration // per attempt
	RetryAttempts int           // total attempts, at least 1
	RetryDelay    time.Duration // fixed pause between attempts
	Headers       map[string]string
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	c := &Client{cfg: cfg, http: &http.Client{}, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAuthToken makes every following request carry "Authorization: Bearer <token>".
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) ClearAuthToken() { c.SetAuthToken("") }

func (c *Client) authToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Request describes one API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

type RequestOption func(*Request)

func WithQuery(q url.Values) RequestOption {
	return func(r *Request) { r.Query = q }
}

func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = map[string]string{}
		}
		r.Headers[key] = value
	}
}

// Response is a decoded success envelope. Data holds the raw "data" member,
// or the whole body when the server did not use the envelope.
type Response struct {
	Status  int
	Header  http.Header
	Data    json.RawMessage
	Message string
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// Do executes req, retrying transport failures up to RetryAttempts times.
func (c *Client) Do(ctx context.Context, req Request) result.Result[*Response] {
	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return result.Fail[*Response](&Error{Code: CodeRequest, Message: "encode body: " + err.Error(), cause: err})
		}
		body = b
	}

	log := c.logger.WithFields(logrus.Fields{"method": req.Method, "path": req.Path})
	var lastErr *Error
	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		requestsTotal.Add(1)
		resp, err := c.attempt(ctx, req, body)
		if err == nil {
			return result.Ok(resp)
		}
		lastErr = err
		if !err.Retryable() || attempt == c.cfg.RetryAttempts {
			break
		}
		retriesTotal.Add(1)
		log.WithError(err).WithField("attempt", attempt).Warn("request failed, retrying")
		if werr := wait(ctx, c.cfg.RetryDelay); werr != nil {
			lastErr = contextError(ctx, werr)
			break
		}
	}
	failuresTotal.Add(1)
	log.WithError(lastErr).Debug("request failed")
	return result.Fail[*Response](lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// contextError maps a failure caused by the caller's own context. Those are
// never retried.
func contextError(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: "request deadline exceeded", cause: err}
	}
	return &Error{Code: CodeCanceled, Message: "request canceled", cause: err}
}

func (c *Client) attempt(ctx context.Context, req Request, body []byte) (*Response, *Error) {
	actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(actx, req.Method, c.url(req), reader)
	if err != nil {
		return nil, &Error{Code: CodeRequest, Message: err.Error(), cause: err}
	}
	c.setHeaders(httpReq, req, body != nil)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, actx, err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, c.transportError(ctx, actx, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, decodeFailure(res.StatusCode, raw)
	}
	return decodeSuccess(res, raw)
}

func (c *Client) transportError(ctx, actx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return contextError(ctx, err)
	}
	if errors.Is(actx.Err(), context.DeadlineExceeded) {
		return timeoutError(err)
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return timeoutError(err)
	}
	return networkError(err)
}

func (c *Client) url(req Request) string {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (c *Client) setHeaders(httpReq *http.Request, req Request, hasBody bool) {
	httpReq.Header.Set("Accept", "application/json")
	if hasBody {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}
	if tok := c.authToken(); tok != "" {
		httpReq.Header.Set("Authorization", "Bearer "+tok)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
}

func decodeSuccess(res *http.Response, raw []byte) (*Response, *Error) {
	out := &Response{Status: res.StatusCode, Header: res.Header}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Not an object: treat the whole body as data if it is valid JSON.
		if !json.Valid(raw) {
			return nil, parseError(res.StatusCode, err)
		}
		out.Data = raw
		return out, nil
	}
	if env.Success != nil && !*env.Success {
		return nil, envelopeError(res.StatusCode, env)
	}
	if env.Success == nil && env.Data == nil {
		out.Data = raw
		return out, nil
	}
	out.Data = env.Data
	out.Message = env.Message
	return out, nil
}

func decodeFailure(status int, raw []byte) *Error {
	var env envelope
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &env) != nil {
		return statusError(status, "", strings.TrimSpace(string(raw)), nil)
	}
	return envelopeError(status, env)
}

// envelopeError understands both {"error":{code,message,details}} and
// {"success":false,"message":"...","error":<anything>}.
func envelopeError(status int, env envelope) *Error {
	var body errorBody
	if len(env.Error) > 0 && json.Unmarshal(env.Error, &body) == nil && (body.Code != "" || body.Message != "") {
		if body.Message == "" {
			body.Message = env.Message
		}
		return statusError(status, body.Code, body.Message, body.Details)
	}
	var details any
	if len(env.Error) > 0 {
		_ = json.Unmarshal(env.Error, &details)
	}
	return statusError(status, "", env.Message, details)
}
