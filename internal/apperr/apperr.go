// Package apperr defines the typed failures returned by the service layer.
// Every failure carries a stable machine-readable code, a human message and
// optional structured details. The HTTP layer maps codes to status codes via
// Status and renders anything that is not an *Error as an internal error.
package apperr

import (
	"errors"
	"net/http"
)

// Code is the machine-readable failure kind sent to clients.
type Code string

const (
	CodeBadRequest          Code = "BAD_REQUEST"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeAlreadyExists       Code = "ALREADY_EXISTS"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeInternalServerError Code = "INTERNAL_SERVER_ERROR"
)

var defaultMessages = map[Code]string{
	CodeBadRequest:          "Invalid request parameters",
	CodeUnauthorized:        "Unauthorized access. Please log in to continue",
	CodeForbidden:           "You do not have permission to perform this action",
	CodeNotFound:            "The requested resource was not found",
	CodeAlreadyExists:       "Resource already exists",
	CodeValidation:          "Request validation failed",
	CodeInternalServerError: "Something went wrong on our end. We're working to fix it! Please try again later.",
}

var statusCodes = map[Code]int{
	CodeBadRequest:          http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeNotFound:            http.StatusNotFound,
	CodeAlreadyExists:       http.StatusConflict,
	CodeValidation:          http.StatusUnprocessableEntity,
	CodeInternalServerError: http.StatusInternalServerError,
}

// Error is a typed failure. Details is rendered verbatim in the response
// body and must not contain internal state.
type Error struct {
	Code    Code
	Message string
	Details any
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Status returns the HTTP status code for the error's code.
func (e *Error) Status() int {
	if s, ok := statusCodes[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New builds an Error, falling back to the code's default message when msg
// is empty.
func New(code Code, msg string, details any) *Error {
	if msg == "" {
		msg = DefaultMessage(code)
	}
	return &Error{Code: code, Message: msg, Details: details}
}

// DefaultMessage returns the generic message for code.
func DefaultMessage(code Code) string {
	if m, ok := defaultMessages[code]; ok {
		return m
	}
	return defaultMessages[CodeInternalServerError]
}

func BadRequest(msg string) *Error    { return New(CodeBadRequest, msg, nil) }
func Unauthorized(msg string) *Error  { return New(CodeUnauthorized, msg, nil) }
func Forbidden(msg string) *Error     { return New(CodeForbidden, msg, nil) }
func NotFound(msg string) *Error      { return New(CodeNotFound, msg, nil) }
func AlreadyExists(msg string) *Error { return New(CodeAlreadyExists, msg, nil) }
func Internal() *Error                { return New(CodeInternalServerError, "", nil) }

// Validation builds a VALIDATION_ERROR carrying per-field details.
func Validation(msg string, details any) *Error {
	return New(CodeValidation, msg, details)
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
