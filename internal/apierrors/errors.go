// Package apierrors provides the unified error taxonomy used by every
// service and repository: typed "kinds" that carry a stable code and the
// HTTP status they map to (§7), rather than ad hoc error strings.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error code.
type ErrorCode string

const (
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
	CodeBusinessRule           ErrorCode = "BUSINESS_RULE_VIOLATION"
	CodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	CodeUnauthorized           ErrorCode = "UNAUTHORIZED"
	CodeForbidden              ErrorCode = "FORBIDDEN"
	CodeConflict               ErrorCode = "CONFLICT"
	CodeExternalService        ErrorCode = "SERVICE_ERROR"
	CodeInternal               ErrorCode = "INTERNAL_ERROR"
	CodeDatabase               ErrorCode = "DATABASE_ERROR"
	CodeBadRequest             ErrorCode = "BAD_REQUEST"
	CodeRateLimited            ErrorCode = "RATE_LIMITED"
)

// ServiceError is a structured, typed error with a stable code, an
// HTTP status, and optional structured details for the error envelope.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a structured detail key/value and returns the
// receiver for chaining.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newErr(code ErrorCode, message string, status int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

func wrapErr(code ErrorCode, message string, status int, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// NotFound — entity + id, 404 (§7).
func NotFound(resource, id string) *ServiceError {
	return newErr(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound).
		WithDetails("resource", resource).WithDetails("id", id)
}

// ValidationError — field + message, 400 (§7).
func ValidationError(field, message string) *ServiceError {
	return newErr(CodeValidation, message, http.StatusBadRequest).WithDetails("field", field)
}

// BadRequest is for malformed requests that never reach field-level
// validation (bad JSON, missing path params), 400.
func BadRequest(message string) *ServiceError {
	return newErr(CodeBadRequest, message, http.StatusBadRequest)
}

// BusinessRuleViolation — rule name + message, 422 (§7).
func BusinessRuleViolation(rule, message string) *ServiceError {
	return newErr(CodeBusinessRule, message, http.StatusUnprocessableEntity).WithDetails("rule", rule)
}

// InvalidStateTransition — from + to, 422 (§7 / §4.1).
func InvalidStateTransition(from, to string) *ServiceError {
	return newErr(CodeInvalidStateTransition,
		fmt.Sprintf("cannot transition from %q to %q", from, to),
		http.StatusUnprocessableEntity).
		WithDetails("from", from).WithDetails("to", to)
}

// Unauthorized — missing/bad credentials, 401 (§7).
func Unauthorized(message string) *ServiceError {
	return newErr(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden — missing permission for an otherwise-authenticated caller, 403 (§7).
func Forbidden(message string) *ServiceError {
	return newErr(CodeForbidden, message, http.StatusForbidden)
}

// Conflict — duplicate unique keys, 409 (§7).
func Conflict(message string) *ServiceError {
	return newErr(CodeConflict, message, http.StatusConflict)
}

// ExternalServiceError — upstream failure, 503 (§7).
func ExternalServiceError(service string, err error) *ServiceError {
	return wrapErr(CodeExternalService, fmt.Sprintf("%s is unavailable", service), http.StatusServiceUnavailable, err).
		WithDetails("service", service)
}

// RateLimited — caller exceeded its request budget, 429 (§7).
func RateLimited(message string) *ServiceError {
	return newErr(CodeRateLimited, message, http.StatusTooManyRequests)
}

// Internal wraps an unexpected error, 500 (§7).
func Internal(message string, err error) *ServiceError {
	return wrapErr(CodeInternal, message, http.StatusInternalServerError, err)
}

// Database translates a repository-layer failure, 500 (§7). Repositories
// should prefer the more specific NotFound/Conflict translations below
// for sql.ErrNoRows and unique-violations respectively.
func Database(operation string, err error) *ServiceError {
	return wrapErr(CodeDatabase, "database operation failed", http.StatusInternalServerError, err).
		WithDetails("operation", operation)
}

// IsServiceError reports whether err carries a *ServiceError anywhere in
// its chain.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// As extracts a *ServiceError from an error chain, if present.
func As(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// HTTPStatus returns the HTTP status an error should be reported with,
// defaulting to 500 for untyped errors.
func HTTPStatus(err error) int {
	if se := As(err); se != nil {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Code returns the stable error code for an error, defaulting to
// CodeInternal for untyped errors.
func Code(err error) ErrorCode {
	if se := As(err); se != nil {
		return se.Code
	}
	return CodeInternal
}
