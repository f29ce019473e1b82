// Package apierror provides standardized API error handling.
// Handlers use these types for consistent {code, message} error responses.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Standard error codes.
const (
	CodeBadRequest       Code = "bad_request"
	CodeUnauthorized     Code = "unauthorized"
	CodeForbidden        Code = "forbidden"
	CodeNotFound         Code = "not_found"
	CodeConflict         Code = "conflict"
	CodeValidationFailed Code = "validation_failed"
	CodeUnexpectedError  Code = "unexpected_error"
)

// Domain-specific error codes.
const (
	CodeInvalidGroupName     Code = "invalid_group_name"
	CodeDuplicateGroupName   Code = "duplicate_group_name"
	CodeNotGroupOwner        Code = "not_group_owner"
	CodeInvalidEmail         Code = "invalid_email"
	CodeInvitationExists     Code = "invitation_exists"
	CodeAlreadyMember        Code = "already_member"
	CodeMissingFields        Code = "missing_fields"
	CodePasswordMismatch     Code = "password_mismatch"
	CodePasswordPolicyFailed Code = "password_policy_failed"
	CodeMissingEmail         Code = "missing_email"
	CodeIdentityLookupFailed Code = "identity_lookup_failed"
	CodeCurrentPasswordWrong Code = "current_password_invalid"
	CodePasswordUpdateFailed Code = "password_update_failed"
	CodePasswordServiceError Code = "password_service_unavailable"
	CodeServiceNotConfigured Code = "password_service_not_configured"
)

// Error represents a standardized API error.
type Error struct {
	// HTTP status code
	Status int `json:"-"`

	// Machine-readable error code
	Code Code `json:"code"`

	// Human-readable error message
	Message string `json:"message"`

	// Additional error details (optional)
	Details any `json:"details,omitempty"`

	// Internal error (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Response represents the error response body.
type Response struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ToResponse converts the error to a response body.
func (e *Error) ToResponse() Response {
	return Response{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// WriteJSON writes the error as JSON to the response writer.
func (e *Error) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e.ToResponse())
}

// New creates a new API error.
func New(status int, code Code, message string) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with API error context.
func Wrap(err error, status int, code Code, message string) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(code Code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "Authentication required."
	}
	return New(http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(code Code, message string) *Error {
	if message == "" {
		message = "Access denied."
	}
	return New(http.StatusForbidden, code, message)
}

// NotFound creates a 404 Not Found error.
func NotFound(resource string) *Error {
	message := "Resource not found."
	if resource != "" {
		message = fmt.Sprintf("%s not found.", resource)
	}
	return New(http.StatusNotFound, CodeNotFound, message)
}

// Conflict creates a 409 Conflict error.
func Conflict(code Code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

// ValidationFailed creates a 422 Unprocessable Entity error.
func ValidationFailed(message string, details any) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidationFailed,
		Message: message,
		Details: details,
	}
}

// InternalError creates a 500 Internal Server Error.
func InternalError(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeUnexpectedError,
		Message: "An unexpected error occurred.",
		Err:     err,
	}
}

// BadGateway creates a 502 error for upstream provider failures.
func BadGateway(code Code, message string) *Error {
	return New(http.StatusBadGateway, code, message)
}

// IsAPIError checks if an error is an API error.
func IsAPIError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr)
}

// FromError converts any error to an API error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return InternalError(err)
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
