// Package service wraps each backend endpoint in a typed call. Every
// endpoint has exactly one response schema; the envelope is checked here
// and nowhere else.
package service

import (
	"context"
	stderrors "errors"
	"net/url"

	"github.com/pkg/errors"

	"github.com/sadopc/bizdesk/internal/api"
	"github.com/sadopc/bizdesk/internal/model"
)

// Error is returned when the backend answered with a non-success envelope.
type Error struct {
	Op      string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Op + " failed"
	}
	return e.Message
}

// IsRejected reports whether err is a non-success envelope.
func IsRejected(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// Message returns the text to show a user for err: the server message when
// there is one, the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if stderrors.As(err, &se) {
		return se.Error()
	}
	var ae *api.Error
	if stderrors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// Services bundles the per-resource clients.
type Services struct {
	Companies *Companies
	Contracts *Contracts
	Files     *Files
}

// New creates every service on top of one client.
func New(c *api.Client) *Services {
	return &Services{
		Companies: &Companies{c: c},
		Contracts: &Contracts{c: c},
		Files:     &Files{c: c},
	}
}

func narrow[T any](op string, env model.Envelope[T], err error) (T, error) {
	var zero T
	if err != nil {
		return zero, errors.Wrap(err, op)
	}
	if !env.OK() {
		return zero, &Error{Op: op, Message: env.Message}
	}
	return env.Data, nil
}

func get[T any](ctx context.Context, c *api.Client, op, endpoint string, params api.Params) (T, error) {
	var env model.Envelope[T]
	err := c.Get(ctx, endpoint, params, &env)
	return narrow(op, env, err)
}

func post[T any](ctx context.Context, c *api.Client, op, endpoint string, body any) (T, error) {
	var env model.Envelope[T]
	err := c.Post(ctx, endpoint, body, &env)
	return narrow(op, env, err)
}

func put[T any](ctx context.Context, c *api.Client, op, endpoint string, body any) (T, error) {
	var env model.Envelope[T]
	err := c.Put(ctx, endpoint, body, &env)
	return narrow(op, env, err)
}

func del(ctx context.Context, c *api.Client, op, endpoint string) error {
	var env model.Envelope[any]
	err := c.Delete(ctx, endpoint, nil, &env)
	_, err = narrow(op, env, err)
	return err
}

// optional turns an empty string into an unset parameter.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func path(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
