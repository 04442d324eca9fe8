// Package errors provides structured error types for heightchart.
//
// Every failure that crosses a package boundary carries a [Code]. The CLI
// prints [UserMessage], the terminal board shows it in its status line and
// the HTTP API answers with [HTTPStatus] and the code string.
//
// Codes group by prefix: INVALID_* for rejected input and caller bugs,
// *NOT_FOUND for missing avatars or files, NETWORK_*, TIMEOUT and SHARE_*
// for the asset and share boundaries, and INTERNAL_ERROR for everything else.
//
//	err := errors.New(errors.ErrCodeInvalidAvatar, "height must be positive, got %v", h)
//	if errors.Is(err, errors.ErrCodeInvalidAvatar) {
//	    // reject the form
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", locator)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidAvatar      Code = "INVALID_AVATAR"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig      Code = "INVALID_CONFIG"
	ErrCodeInvalidPermutation Code = "INVALID_PERMUTATION"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeNetwork        Code = "NETWORK_ERROR"
	ErrCodeTimeout        Code = "TIMEOUT"
	ErrCodeShareFailed    Code = "SHARE_FAILED"
	ErrCodeNothingToShare Code = "NOTHING_TO_SHARE"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

type codeInfo struct {
	status  int
	summary string
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:       {http.StatusBadRequest, "invalid input"},
	ErrCodeInvalidAvatar:      {http.StatusBadRequest, "invalid avatar"},
	ErrCodeInvalidFormat:      {http.StatusBadRequest, "malformed data"},
	ErrCodeInvalidConfig:      {http.StatusBadRequest, "invalid configuration"},
	ErrCodeInvalidPermutation: {http.StatusConflict, "order does not match the current avatars"},
	ErrCodeNotFound:           {http.StatusNotFound, "not found"},
	ErrCodeFileNotFound:       {http.StatusNotFound, "file not found"},
	ErrCodeNetwork:            {http.StatusBadGateway, "network error"},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, "request timed out"},
	ErrCodeShareFailed:        {http.StatusBadGateway, "share failed"},
	ErrCodeNothingToShare:     {http.StatusBadRequest, "nothing to share"},
	ErrCodeUnsupported:        {http.StatusNotImplemented, "not supported"},
	ErrCodeInternal:           {http.StatusInternalServerError, "internal error"},
}

// Status is the HTTP status the API answers with for c. Unknown codes map
// to 500.
func (c Code) Status() int {
	if info, ok := codes[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Summary is a short generic description of c, used when an error carries no
// message of its own.
func (c Code) Summary() string {
	if info, ok := codes[c]; ok {
		return info.summary
	}
	return codes[ErrCodeInternal].summary
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.Summary()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error with the same code, so a bare &Error{Code: c}
// works as a target for the standard errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix. Errors without
// a code are returned as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Message == "" {
		return e.Code.Summary()
	}
	return e.Message
}

// HTTPStatus maps err to the HTTP status the API responds with.
func HTTPStatus(err error) int {
	return GetCode(err).Status()
}
