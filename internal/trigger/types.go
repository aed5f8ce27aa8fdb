// Package trigger implements a loopback-only HTTP endpoint that forwards simple
// text commands to an application supplied Handler and reports the outcome as JSON.
package trigger

import (
	"context"
	"errors"
)

// Params carries the optional parameters of a trigger request. An empty string
// means the parameter was not supplied.
type Params struct {
	Text   string
	Action string
}

// Handler runs a command. A false result, a non-nil error or a panic are all
// reported to the HTTP client as {"success":false}.
type Handler func(ctx context.Context, cmd string, params Params) (bool, error)

// Request is one parsed trigger request.
type Request struct {
	Cmd    string
	Params Params
}

// ErrDeclined is the failure reason recorded when a handler returns false without an error.
var ErrDeclined = errors.New("handler reported failure")

// Outcome is the result of one handler invocation.
type Outcome struct {
	ok     bool
	reason error
}

// Success returns a successful outcome.
func Success() Outcome {
	return Outcome{ok: true}
}

// Failure returns a failed outcome. A nil reason is replaced with ErrDeclined.
func Failure(reason error) Outcome {
	if reason == nil {
		reason = ErrDeclined
	}
	return Outcome{reason: reason}
}

// OK reports whether the handler succeeded.
func (o Outcome) OK() bool {
	return o.ok
}

// Reason returns why the outcome failed, or nil on success.
func (o Outcome) Reason() error {
	return o.reason
}

// Error codes returned in the "error" field of a response.
const (
	CodeInvalidJSON = "INVALID_JSON"
	CodeNotFound    = "NOT_FOUND"
	CodeServerError = "SERVER_ERROR"
)

type healthResponse struct {
	OK bool `json:"ok"`
}

type triggerResponse struct {
	Success bool   `json:"success"`
	Cmd     string `json:"cmd"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
