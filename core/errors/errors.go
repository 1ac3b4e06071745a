package errors

import "fmt"

type ErrorCode string

const (
	// Time range validation
	ErrInvalidRange    ErrorCode = "INVALID_RANGE"
	ErrPastEnd         ErrorCode = "PAST_END"
	ErrTooShort        ErrorCode = "TOO_SHORT"
	ErrTooLong         ErrorCode = "TOO_LONG"
	ErrCrossesMidnight ErrorCode = "CROSSES_MIDNIGHT"

	// Scheduling
	ErrScheduleConflict ErrorCode = "SCHEDULE_CONFLICT"
	ErrConcurrentUpdate ErrorCode = "CONCURRENT_UPDATE"

	// Reminder dispatch
	ErrDispatchFailed     ErrorCode = "DISPATCH_FAILED"
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// Generic
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
)

// AppError is the error type services return. Details carries
// structured payloads for the client (e.g. the conflicting blocks
// on a SCHEDULE_CONFLICT).
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewAppErrorWithDetails(code ErrorCode, message string, details any, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Err:     err,
	}
}
