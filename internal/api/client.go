package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// DefaultTimeout is the per-call budget when none is given.
const DefaultTimeout = 10 * time.Second

// ResponseType selects how a response body is decoded.
type ResponseType int

const (
	// ResponseAuto decodes JSON when the server says so, raw text otherwise.
	ResponseAuto ResponseType = iota
	ResponseJSON
	ResponseText
	ResponseBinary
)

// Request describes a single call.
type Request struct {
	Method       string
	Endpoint     string
	Params       Params
	Body         any // JSON-encoded when non-nil
	Headers      map[string]string
	Timeout      time.Duration
	ResponseType ResponseType
}

// Response is the decoded result of a successful call.
type Response struct {
	StatusCode int
	Status     string
	OK         bool
	Headers    http.Header
	// Data is json.RawMessage for JSON bodies, string for text and []byte
	// for binary.
	Data     any
	Raw      []byte
	Duration time.Duration
}

// Client is the single call surface for the REST API.
type Client struct {
	mu        sync.Mutex
	baseURL   string
	headers   map[string]string
	timeout   time.Duration
	proxyURL  string
	tlsConfig *tls.Config
	transport http.RoundTripper
	logger    *zap.Logger
}

// New creates a client bound to baseURL (origin plus the /api prefix).
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json, text/plain, */*",
		},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
}

// BaseURL returns the configured base address.
func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}

// SetBaseURL changes the base address for subsequent calls.
func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(u, "/")
	c.mu.Unlock()
}

// SetTimeout sets the default per-call timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTimeout
	}
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Timeout returns the default per-call timeout.
func (c *Client) Timeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// SetHeader sets a header sent with every call.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	c.headers[key] = value
	c.mu.Unlock()
}

// SetLogger sets the logger used for request tracing.
func (c *Client) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// SetProxy routes calls through an http(s) or socks5 proxy.
func (c *Client) SetProxy(proxyURL string) {
	c.mu.Lock()
	c.proxyURL = proxyURL
	c.transport = nil
	c.mu.Unlock()
}

// SetTLSConfig sets the TLS configuration for https base addresses.
func (c *Client) SetTLSConfig(cfg *tls.Config) {
	c.mu.Lock()
	c.tlsConfig = cfg
	c.transport = nil
	c.mu.Unlock()
}

// SetTransport replaces the round tripper. Used by tests and by the upload
// transport to share connection settings.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.mu.Lock()
	c.transport = rt
	c.mu.Unlock()
}

// HTTPClient returns an *http.Client without a client-level timeout; callers
// bound each request with a context instead.
func (c *Client) HTTPClient() (*http.Client, error) {
	rt, err := c.roundTripper()
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: rt}, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// URL joins the base address, endpoint and query string.
func (c *Client) URL(endpoint string, params Params) string {
	u := c.BaseURL() + endpoint
	if q := params.Encode(); q != "" {
		if strings.Contains(u, "?") {
			u += "&" + q
		} else {
			u += "?" + q
		}
	}
	return u
}

// CallOption overrides per-call settings.
type CallOption func(*Request)

// WithHeader adds a header to a single call.
func WithHeader(key, value string) CallOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithTimeout overrides the timeout of a single call.
func WithTimeout(d time.Duration) CallOption {
	return func(r *Request) { r.Timeout = d }
}

// WithResponseType forces the body interpretation of a single call.
func WithResponseType(rt ResponseType) CallOption {
	return func(r *Request) { r.ResponseType = rt }
}

// Get issues a GET and decodes the body into out.
func (c *Client) Get(ctx context.Context, endpoint string, params Params, out any, opts ...CallOption) error {
	return c.call(ctx, &Request{Method: http.MethodGet, Endpoint: endpoint, Params: params}, out, opts)
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.call(ctx, &Request{Method: http.MethodPost, Endpoint: endpoint, Body: body}, out, opts)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.call(ctx, &Request{Method: http.MethodPut, Endpoint: endpoint, Body: body}, out, opts)
}

// Patch issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...CallOption) error {
	return c.call(ctx, &Request{Method: http.MethodPatch, Endpoint: endpoint, Body: body}, out, opts)
}

// Delete issues a DELETE and decodes the body into out.
func (c *Client) Delete(ctx context.Context, endpoint string, params Params, out any, opts ...CallOption) error {
	return c.call(ctx, &Request{Method: http.MethodDelete, Endpoint: endpoint, Params: params}, out, opts)
}

func (c *Client) call(ctx context.Context, req *Request, out any, opts []CallOption) error {
	for _, opt := range opts {
		opt(req)
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return Decode(resp, out)
}

// Do executes req and returns the decoded envelope. Every failure is an
// *Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.Timeout()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Message: fmt.Sprintf("encoding request body: %v", err), Err: err}
		}
		body = bytes.NewReader(data)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := c.URL(req.Endpoint, req.Params)
	httpReq, err := http.NewRequestWithContext(callCtx, req.Method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindRequest, Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}

	c.mu.Lock()
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	logger := c.logger
	c.mu.Unlock()
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	hc, err := c.HTTPClient()
	if err != nil {
		return nil, &Error{Kind: KindRequest, Message: fmt.Sprintf("configuring transport: %v", err), Err: err}
	}

	start := time.Now()
	httpResp, err := hc.Do(httpReq)
	if err != nil {
		apiErr := classify(ctx, callCtx, err, timeout)
		logger.Debug("api call failed",
			zap.String("method", req.Method),
			zap.String("url", target),
			zap.String("request_id", requestID),
			zap.Stringer("kind", apiErr.Kind),
			zap.Error(err))
		return nil, apiErr
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classify(ctx, callCtx, err, timeout)
	}
	duration := time.Since(start)

	logger.Debug("api call",
		zap.String("method", req.Method),
		zap.String("url", target),
		zap.String("request_id", requestID),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("duration", duration),
		zap.Int("size", len(raw)))

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		OK:         httpResp.StatusCode >= 200 && httpResp.StatusCode < 300,
		Headers:    httpResp.Header,
		Raw:        raw,
		Duration:   duration,
	}

	data, decErr := decodeBody(raw, httpResp.Header.Get("Content-Type"), req.ResponseType)

	if !resp.OK {
		var errData any
		if decErr == nil {
			errData = errorPayload(data)
		}
		return nil, newServerError(resp.StatusCode, statusText(httpResp), errData)
	}
	if decErr != nil {
		return nil, &Error{Kind: KindDecode, Message: fmt.Sprintf("request failed: %v", decErr), Err: decErr}
	}
	resp.Data = data
	return resp, nil
}

func decodeBody(raw []byte, contentType string, rt ResponseType) (any, error) {
	switch rt {
	case ResponseBinary:
		return raw, nil
	case ResponseText:
		return string(raw), nil
	case ResponseJSON:
		return asJSON(raw)
	default:
		if isJSONContent(contentType) {
			return asJSON(raw)
		}
		return string(raw), nil
	}
}

func asJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("invalid JSON in response body")
	}
	return json.RawMessage(trimmed), nil
}

func isJSONContent(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// errorPayload turns a decoded error body into a generic value so the
// message field can be inspected.
func errorPayload(data any) any {
	raw, ok := data.(json.RawMessage)
	if !ok {
		return data
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
}

// classify maps a transport error to an *Error. parent is the caller's
// context, callCtx the one carrying our timeout.
func classify(parent, callCtx context.Context, err error, timeout time.Duration) *Error {
	switch {
	case parent.Err() != nil && !errors.Is(parent.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindCanceled, Message: "request canceled", Err: err}
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("request timed out (%dms)", timeout.Milliseconds()), Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("request timed out (%dms)", timeout.Milliseconds()), Err: err}
	}
	return &Error{Kind: KindNetwork, Message: fmt.Sprintf("network error: %v", unwrapURLError(err)), Err: err}
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// Decode copies the response data into out. out may be nil, *[]byte,
// *string, *json.RawMessage or any JSON target.
func Decode(resp *Response, out any) error {
	if out == nil {
		return nil
	}
	switch dst := out.(type) {
	case *[]byte:
		*dst = resp.Raw
		return nil
	case *string:
		if s, ok := resp.Data.(string); ok {
			*dst = s
		} else {
			*dst = string(resp.Raw)
		}
		return nil
	case *json.RawMessage:
		if raw, ok := resp.Data.(json.RawMessage); ok {
			*dst = raw
			return nil
		}
		return &Error{Kind: KindDecode, Message: "request failed: response is not JSON"}
	}
	raw, ok := resp.Data.(json.RawMessage)
	if !ok {
		return &Error{Kind: KindDecode, Message: "request failed: response is not JSON"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Message: fmt.Sprintf("request failed: decoding response: %v", err), Err: err}
	}
	return nil
}

func (c *Client) roundTripper() (http.RoundTripper, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport != nil {
		return c.transport, nil
	}
	rt, err := buildTransport(c.proxyURL, c.tlsConfig)
	if err != nil {
		return nil, err
	}
	c.transport = rt
	return rt, nil
}

// buildTransport creates an http.Transport configured with proxy and TLS
// settings.
func buildTransport(proxyURL string, tlsConfig *tls.Config) (http.RoundTripper, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		Proxy:               http.ProxyFromEnvironment,
	}
	if tlsConfig != nil {
		transport.TLSClientConfig = tlsConfig
	}
	if proxyURL == "" {
		return transport, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy URL: %w", err)
	}
	switch parsed.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if parsed.User != nil {
			password, _ := parsed.User.Password()
			auth = &proxy.Auth{User: parsed.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
	case "http", "https":
		transport.Proxy = http.ProxyURL(parsed)
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", parsed.Scheme)
	}
	return transport, nil
}
