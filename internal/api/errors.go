package api

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a call failed.
type ErrorKind int

const (
	// KindServer means a response arrived with a non-2xx status.
	KindServer ErrorKind = iota + 1
	// KindTimeout means the time budget ran out before the call settled.
	KindTimeout
	// KindNetwork means the server could not be reached.
	KindNetwork
	// KindCanceled means the caller's context was canceled.
	KindCanceled
	// KindDecode means a 2xx body could not be decoded as requested.
	KindDecode
	// KindRequest means the request could not be built or its body could
	// not be read on this side, so nothing meaningful reached the server.
	KindRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindCanceled:
		return "canceled"
	case KindDecode:
		return "decode"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is returned for every failed call made through Client or the
// upload transport.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // set for KindServer
	Data       any // decoded error body, if any
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// ServerMessage returns the message field of the decoded error body, if the
// server supplied one.
func (e *Error) ServerMessage() string {
	return messageField(e.Data)
}

func newServerError(status int, statusText string, data any) *Error {
	msg := messageField(data)
	if msg == "" {
		msg = fmt.Sprintf("request failed: %s", statusText)
	}
	return &Error{Kind: KindServer, Message: msg, StatusCode: status, Data: data}
}

func messageField(data any) string {
	m, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["message"].(string)
	return s
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsTimeout(err error) bool  { return KindOf(err) == KindTimeout }
func IsNetwork(err error) bool  { return KindOf(err) == KindNetwork }
func IsServer(err error) bool   { return KindOf(err) == KindServer }
func IsCanceled(err error) bool { return KindOf(err) == KindCanceled }
func IsRequest(err error) bool  { return KindOf(err) == KindRequest }
