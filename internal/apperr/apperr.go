package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies a domain error so handlers can map it onto an HTTP status
// without string matching.
type Code string

const (
	CodeValidation        Code = "validation"
	CodeDuplicate         Code = "duplicate"
	CodeInvalidTransition Code = "invalid_transition"
	CodeNotFound          Code = "not_found"
	CodeForbidden         Code = "forbidden"
	CodeUnauthorized      Code = "unauthorized"
	CodeUpstream          Code = "upstream"
	CodePartial           Code = "partial"
	CodeInternal          Code = "internal"
)

// Error is a coded domain error. Err holds the underlying cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	var p *PartialError
	if errors.As(err, &p) {
		return code == CodePartial
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var p *PartialError
	if errors.As(err, &p) {
		return CodePartial
	}
	return CodeInternal
}

// MessageOf returns the human-readable message of err, falling back to
// err.Error() for uncoded errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var p *PartialError
	if errors.As(err, &p) {
		return p.Message()
	}
	return err.Error()
}

// PartialError reports a multi-step operation that failed after some steps
// already committed. There is no automatic compensation: Completed names the
// steps whose writes are durable, Failed the step that broke the sequence.
type PartialError struct {
	Op        string
	Completed []string
	Failed    string
	Err       error
}

func NewPartial(op string, completed []string, failed string, err error) *PartialError {
	return &PartialError{Op: op, Completed: completed, Failed: failed, Err: err}
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("partial: %s: %v", e.Message(), e.Err)
}

func (e *PartialError) Message() string {
	done := "none"
	if len(e.Completed) > 0 {
		done = strings.Join(e.Completed, ", ")
	}
	return fmt.Sprintf("%s failed at step %q (completed: %s); already-applied writes were not rolled back", e.Op, e.Failed, done)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}
