// Package apperrors carries the error kinds the API distinguishes between.
// Handlers translate codes to HTTP statuses; services never expose raw
// storage errors for the conditions covered here.
package apperrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_FAILURE"
	CodeConflict      Code = "CONFLICT"
	CodeNotAuthorized Code = "NOT_AUTHORIZED"
	CodeNotFound      Code = "NOT_FOUND"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func NotAuthorized(message string) *Error {
	return &Error{Code: CodeNotAuthorized, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsValidation(err error) bool    { return CodeOf(err) == CodeValidation }
func IsConflict(err error) bool      { return CodeOf(err) == CodeConflict }
func IsNotAuthorized(err error) bool { return CodeOf(err) == CodeNotAuthorized }
func IsNotFound(err error) bool      { return CodeOf(err) == CodeNotFound }
