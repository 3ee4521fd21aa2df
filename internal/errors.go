package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeOtpInvalidOrExpired ErrorCode = "OTP_INVALID_OR_EXPIRED"
	ErrCodeResendTooSoon       ErrorCode = "RESEND_TOO_SOON"
	ErrCodeTokenMissing        ErrorCode = "TOKEN_MISSING"
	ErrCodeTokenInvalid        ErrorCode = "TOKEN_INVALID"
	ErrCodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSessionExpired      ErrorCode = "SESSION_EXPIRED"

	ErrCodePortalUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodePortalTimeout     ErrorCode = "REQUEST_TIMEOUT"
	ErrCodePortalRejected    ErrorCode = "PORTAL_REJECTED"

	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeMenuNotFound      ErrorCode = "MENU_NOT_FOUND"
	ErrCodeResetTokenInvalid ErrorCode = "RESET_TOKEN_INVALID"
	ErrCodeSamePassword      ErrorCode = "SAME_PASSWORD"
)

// AppError is the single error shape handlers translate to HTTP responses.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches by code, so clones produced by WithCause/WithMessage still
// compare equal to their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithMessage(message string) *AppError {
	clone := *e
	if message != "" {
		clone.Message = message
	}
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewExternalError(message string, code ErrorCode, status int) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Sentinel errors for the gateway. Call sites distinguish
// ErrPortalUnavailable (infrastructure down, ask user to retry) from
// ErrPortalRejected (explicit 401 from the portal, force re-login).
var (
	ErrInvalidCredentials  = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrOtpInvalidOrExpired = NewUnauthorizedError("Invalid or expired OTP", ErrCodeOtpInvalidOrExpired)
	ErrResendTooSoon       = NewConflictError("OTP was requested too recently, please wait before retrying", ErrCodeResendTooSoon)
	ErrTokenMissing        = NewUnauthorizedError("Authentication required. Token not found or provided.", ErrCodeTokenMissing)
	ErrTokenInvalid        = NewUnauthorizedError("Invalid token format.", ErrCodeTokenInvalid)
	ErrTokenExpired        = NewUnauthorizedError("Token has expired. Please login again.", ErrCodeTokenExpired)
	ErrSessionExpired      = NewUnauthorizedError("Session has expired. Please login again.", ErrCodeSessionExpired)

	ErrPortalUnavailable = NewExternalError("Auth service unavailable", ErrCodePortalUnavailable, http.StatusServiceUnavailable)
	ErrPortalTimeout     = NewExternalError("Request timeout", ErrCodePortalTimeout, http.StatusRequestTimeout)
	ErrPortalRejected    = NewUnauthorizedError("Rejected by auth service", ErrCodePortalRejected)

	ErrUserNotFound      = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrResetTokenInvalid = NewValidationError("Invalid or expired token", ErrCodeResetTokenInvalid)
	ErrSamePassword      = NewValidationError("New password cannot match the previous password", ErrCodeSamePassword)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
