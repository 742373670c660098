package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode is the machine-readable reason sent to webhook senders and clients
type ErrorCode string

const (
	ErrorCode_MALFORMED_JSON           ErrorCode = "malformed_json"
	ErrorCode_MISSING_API_KEY          ErrorCode = "missing_api_key"
	ErrorCode_MISSING_TRANSCRIPTS      ErrorCode = "missing_transcripts"
	ErrorCode_INVALID_TRANSCRIPT_ENTRY ErrorCode = "invalid_transcript_entry"
	ErrorCode_UNKNOWN_SENDER           ErrorCode = "unknown_sender"
	ErrorCode_RESOLVER_UNAVAILABLE     ErrorCode = "resolver_unavailable"
	ErrorCode_STORAGE_UNAVAILABLE      ErrorCode = "storage_unavailable"
	ErrorCode_METHOD_NOT_ALLOWED       ErrorCode = "method_not_allowed"
	ErrorCode_UNAUTHENTICATED          ErrorCode = "unauthenticated"
	ErrorCode_INVALID_SIGNATURE        ErrorCode = "invalid_signature"
	ErrorCode_NOT_FOUND                ErrorCode = "not_found"
	ErrorCode_INVALID_ARGUMENT         ErrorCode = "invalid_argument"
	ErrorCode_REGISTRATION_FAILED      ErrorCode = "registration_failed"
	ErrorCode_INTERNAL                 ErrorCode = "internal"
)

// String returns the wire form of the code
func (c ErrorCode) String() string {
	return string(c)
}

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrMethodNotAllowed(method string) AppError {
	return AppError{
		HTTPCode: http.StatusMethodNotAllowed,
		Code:     ErrorCode_METHOD_NOT_ALLOWED,
		Message:  "Method not allowed",
	}.WithDetail("method", method)
}

// Ingestion Errors

// ErrRejectedPayload maps a validator rejection to a 400
func ErrRejectedPayload(code ErrorCode, details string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     code,
		Message:  details,
	}
}

func ErrUnknownSender() AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_UNKNOWN_SENDER,
		Message:  "unknown sender",
	}
}

func ErrInvalidSignature() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_INVALID_SIGNATURE,
		Message:  "webhook signature mismatch",
	}
}

func ErrResolverUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_RESOLVER_UNAVAILABLE,
		Message:  "resolver unavailable",
	}
}

func ErrStorageUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_STORAGE_UNAVAILABLE,
		Message:  "storage unavailable",
	}
}

// Registration Errors
func ErrRegistrationFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_REGISTRATION_FAILED,
		Message:  "Registration forwarding failed",
	}
}
