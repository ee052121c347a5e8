package apperrors

import "errors"

// =============================================================================
// Error Codes
// =============================================================================

type ErrorCode string

const (
	ErrorCodeInternalError    ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError  ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrorCodeNotLoaded        ErrorCode = "NOT_LOADED"
	ErrorCodeSonosTimeout     ErrorCode = "SONOS_TIMEOUT"
	ErrorCodeSonosUnreachable ErrorCode = "SONOS_UNREACHABLE"
	ErrorCodeSonosRejected    ErrorCode = "SONOS_REJECTED"
	ErrorCodeAuthTokenExpired ErrorCode = "AUTH_TOKEN_EXPIRED"
	ErrorCodeAuthTokenInvalid ErrorCode = "AUTH_TOKEN_INVALID"
)

// =============================================================================
// Stripe API Error Types
// =============================================================================

// ErrorType categorizes errors following Stripe API conventions.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates invalid parameters, missing required fields, etc.
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeAPIError indicates an internal API error.
	ErrorTypeAPIError ErrorType = "api_error"
	// ErrorTypeAuthError indicates authentication or authorization failure.
	ErrorTypeAuthError ErrorType = "authentication_error"
)

// StripeErrorBody is the Stripe-style error payload.
// Format: {"type": "invalid_request_error", "code": "NOT_FOUND", "message": "..."}
type StripeErrorBody struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// AppError is the base error type for HTTP responses and surfaced failures.
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Err        error
}

func (err *AppError) Error() string {
	return err.Message
}

// Unwrap exposes the underlying cause so errors.Is keeps working through an AppError.
func (err *AppError) Unwrap() error {
	return err.Err
}

// StripeErrorBody returns the error in Stripe API format.
func (err *AppError) StripeErrorBody() StripeErrorBody {
	errType := ErrorTypeAPIError
	switch {
	case err.StatusCode == 401 || err.StatusCode == 403:
		errType = ErrorTypeAuthError
	case err.StatusCode >= 400 && err.StatusCode < 500:
		errType = ErrorTypeInvalidRequest
	}

	return StripeErrorBody{
		Type:    errType,
		Code:    string(err.Code),
		Message: err.Message,
	}
}

func NewAppError(code ErrorCode, message string, statusCode int, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        cause,
	}
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrorCodeValidationError, message, 400, nil)
}

func NewUnauthorizedError(message string, code ...ErrorCode) *AppError {
	errCode := ErrorCodeUnauthorized
	if len(code) > 0 {
		errCode = code[0]
	}
	return NewAppError(errCode, message, 401, nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrorCodeNotFound, message, 404, nil)
}

// NewMalformedPayloadError reports an upstream zones payload that is not a sequence of zones.
func NewMalformedPayloadError(message string, cause error) *AppError {
	return NewAppError(ErrorCodeMalformedPayload, message, 502, cause)
}

// NewNotLoadedError is returned while no zones payload has been normalized yet.
func NewNotLoadedError() *AppError {
	return NewAppError(ErrorCodeNotLoaded, "Room list not loaded yet", 503, nil)
}

func NewUpstreamError(code ErrorCode, message string, cause error) *AppError {
	return NewAppError(code, message, 502, cause)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorCodeInternalError, message, 500, nil)
}

// EnsureAppError converts an arbitrary error into an AppError.
func EnsureAppError(err error) *AppError {
	if err == nil {
		return NewInternalError("Unknown error")
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("Internal server error")
}
