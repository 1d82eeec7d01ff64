// Package upload sends multipart files to the backend with progress
// reporting, one file per request.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sadopc/bizdesk/internal/api"
)

// DefaultTimeout bounds a whole upload, body and response included.
const DefaultTimeout = 30 * time.Second

// ProgressFunc receives the percentage of the body sent so far.
type ProgressFunc func(percent int)

// Transport performs multipart uploads through the API client's connection
// settings.
type Transport struct {
	client  *api.Client
	timeout time.Duration
}

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout replaces the fixed upload timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewTransport creates a transport that shares client's base address,
// proxy, TLS and logger.
func NewTransport(client *api.Client, opts ...Option) *Transport {
	t := &Transport{client: client, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Upload POSTs form to path and returns the decoded reply: the JSON value,
// the raw text when the body is not JSON, or an empty object when the body
// is empty. Every failure is an *api.Error. progress may be nil; it is never
// called after Upload returns.
func (t *Transport) Upload(ctx context.Context, path string, form *Form, progress ProgressFunc) (any, error) {
	payload, contentType, err := form.encode()
	if err != nil {
		return nil, &api.Error{Kind: api.KindRequest, Message: fmt.Sprintf("preparing upload: %v", err), Err: err}
	}
	defer payload.Close()

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	reporter := &progressReporter{fn: progress, total: payload.Len(), last: -1}
	defer reporter.stop()

	target := t.client.URL(path, nil)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, target, &progressReader{r: payload, rep: reporter})
	if err != nil {
		return nil, &api.Error{Kind: api.KindRequest, Message: fmt.Sprintf("preparing upload: %v", err), Err: err}
	}
	req.ContentLength = payload.Len()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Request-ID", uuid.NewString())

	hc, err := t.client.HTTPClient()
	if err != nil {
		return nil, &api.Error{Kind: api.KindRequest, Message: fmt.Sprintf("configuring transport: %v", err), Err: err}
	}
	logger := t.client.Logger()

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		reporter.stop()
		apiErr := t.classify(ctx, callCtx, err)
		logger.Debug("upload failed", zap.String("url", target), zap.Stringer("kind", apiErr.Kind), zap.Error(err))
		return nil, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	reporter.stop()
	if err != nil {
		return nil, t.classify(ctx, callCtx, err)
	}

	logger.Debug("upload",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Int64("bytes", req.ContentLength),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &api.Error{
			Kind:       api.KindServer,
			Message:    fmt.Sprintf("upload failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
			StatusCode: resp.StatusCode,
			Data:       decodeReply(raw),
		}
	}
	return decodeReply(raw), nil
}

func (t *Transport) classify(parent, callCtx context.Context, err error) *api.Error {
	var fileErr *FileError
	switch {
	case errors.As(err, &fileErr):
		return &api.Error{Kind: api.KindRequest, Message: fmt.Sprintf("reading %s: %v", fileErr.Name, fileErr.Err), Err: err}
	case parent.Err() != nil && !errors.Is(parent.Err(), context.DeadlineExceeded):
		return &api.Error{Kind: api.KindCanceled, Message: "upload canceled", Err: err}
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return &api.Error{Kind: api.KindTimeout, Message: "upload timed out", Err: err}
	}
	return &api.Error{Kind: api.KindNetwork, Message: "network error, check the connection", Err: err}
}

func decodeReply(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return string(raw)
	}
	return v
}

// progressReporter turns byte counts into percentages. Once stopped it
// drops every later report.
type progressReporter struct {
	mu      sync.Mutex
	fn      ProgressFunc
	total   int64
	sent    int64
	last    int
	stopped bool
}

func (p *progressReporter) add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.fn == nil || p.total <= 0 {
		return
	}
	p.sent += int64(n)
	pct := int(math.Round(float64(p.sent) / float64(p.total) * 100))
	if pct > 100 {
		pct = 100
	}
	if pct <= p.last {
		return
	}
	p.last = pct
	// called under the lock so stop cannot return while a report is in flight
	p.fn(pct)
}

func (p *progressReporter) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

type progressReader struct {
	r   io.Reader
	rep *progressReporter
}

func (r *progressReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	if n > 0 {
		r.rep.add(n)
	}
	return n, err
}
