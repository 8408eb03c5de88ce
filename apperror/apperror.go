// Package apperror defines a centralized system for application-specific errors.
// Every handler funnels its failures through Write, so clients always see the same
// response shapes: itemized `{"errors":[{"msg":...}]}` bodies for client mistakes and an
// opaque plain-text body for server-side failures, whose detail is only logged.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of an application error.
type ErrorType int

// Error categories. Each maps to a default HTTP status in kinds below.
const (
	UnknownError ErrorType = iota
	DatabaseError
	AuthError
	NotFoundError
	ValidationError
	BadRequestError
	InternalError
	MigrationError
	ConflictError
)

type kind struct {
	name   string
	status int
}

var kinds = map[ErrorType]kind{
	DatabaseError:   {"database", http.StatusInternalServerError},
	AuthError:       {"auth", http.StatusUnauthorized},
	NotFoundError:   {"not_found", http.StatusNotFound},
	ValidationError: {"validation", http.StatusBadRequest},
	BadRequestError: {"bad_request", http.StatusBadRequest},
	InternalError:   {"internal", http.StatusInternalServerError},
	MigrationError:  {"migration", http.StatusInternalServerError},
	ConflictError:   {"conflict", http.StatusConflict},
}

// String returns a short, log-friendly name for the error type.
func (t ErrorType) String() string {
	if k, ok := kinds[t]; ok {
		return k.name
	}
	return "unknown"
}

// FieldError is a single client-facing error item.
// Param and Location are set for validation failures and name the offending input.
type FieldError struct {
	Msg      string `json:"msg" example:"Please include a valid email"`
	Param    string `json:"param,omitempty" example:"email"`
	Location string `json:"location,omitempty" example:"body"`
}

// AppError is a custom error type for the application.
// It allows wrapping an underlying error (`Err`) for logging while keeping
// `Message` as the only text a client may see.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error // Underlying error
	// Fields holds per-input messages for validation failures.
	Fields []FieldError
	// status overrides the type's default HTTP status when non-zero.
	status int
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithStatus returns the error with an explicit HTTP status, replacing the type default.
func (e *AppError) WithStatus(status int) *AppError {
	e.status = status
	return e
}

// StatusCode returns the HTTP status for the error: the explicit override if set,
// otherwise the default of its type.
func (e *AppError) StatusCode() int {
	if e.status != 0 {
		return e.status
	}
	if k, ok := kinds[e.Type]; ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// IsServerError reports whether the error is answered with a 5xx status.
func (e *AppError) IsServerError() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewAuthError creates a new AuthError (for authentication issues)
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a ValidationError listing one item per failed rule.
func NewValidationError(fields []FieldError) *AppError {
	e := NewAppError(ValidationError, "validation failed", nil)
	e.Fields = fields
	return e
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// ErrorResponse is the JSON body returned for every 4xx response.
type ErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Only the user-facing message (or the validation items) is included, never `Err`.
func (e *AppError) ToResponse() ErrorResponse {
	if len(e.Fields) > 0 {
		return ErrorResponse{Errors: e.Fields}
	}
	return ErrorResponse{Errors: []FieldError{{Msg: e.Message}}}
}

// FromError converts any error into an *AppError. Errors that are not already
// application errors (anywhere in their chain) become InternalError.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("unexpected error", err)
}

// Is reports whether err, or any error it wraps, is an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == errType
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool { return Is(err, NotFoundError) }

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool { return Is(err, ValidationError) }

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool { return Is(err, ConflictError) }
