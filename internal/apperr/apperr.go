// Package apperr defines the typed failures business operations return.
// Transport adapters map these onto wire codes; services never return raw
// storage errors to callers.
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeConflict           Code = "CONFLICT"
	CodePreconditionFailed Code = "PRECONDITION_FAILED"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...any) *Error {
	return newError(CodeInvalidInput, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(CodeNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(CodeForbidden, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(CodeConflict, format, args...)
}

func PreconditionFailed(format string, args ...any) *Error {
	return newError(CodePreconditionFailed, format, args...)
}

// CodeOf returns the code carried by err, or "" for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsInvalidInput(err error) bool { return CodeOf(err) == CodeInvalidInput }
func IsNotFound(err error) bool     { return CodeOf(err) == CodeNotFound }
func IsForbidden(err error) bool    { return CodeOf(err) == CodeForbidden }
func IsConflict(err error) bool     { return CodeOf(err) == CodeConflict }
func IsPreconditionFailed(err error) bool {
	return CodeOf(err) == CodePreconditionFailed
}
