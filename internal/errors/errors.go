// Package errors provides custom error types for the finboard API.
// All service-layer errors should use AppError so responses stay consistent
// and never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
	ErrSetupRequired      = &AppError{Code: "SETUP_REQUIRED", Message: "Setup required: create an administrator first", StatusCode: http.StatusForbidden}
	ErrAdminExists        = &AppError{Code: "ADMIN_EXISTS", Message: "An administrator already exists", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound        = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail      = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrIncorrectPassword   = &AppError{Code: "INCORRECT_PASSWORD", Message: "Current password is incorrect", StatusCode: http.StatusBadRequest}
	ErrEmailMismatch       = &AppError{Code: "EMAIL_MISMATCH", Message: "Current email does not match", StatusCode: http.StatusBadRequest}
	ErrInvalidConfirmation = &AppError{Code: "INVALID_CONFIRMATION", Message: "Confirmation text must be DELETE", StatusCode: http.StatusBadRequest}
	ErrInvalidResetCode    = &AppError{Code: "INVALID_RESET_CODE", Message: "Invalid or expired reset code", StatusCode: http.StatusBadRequest}
	ErrPasswordTooShort    = &AppError{Code: "INVALID_INPUT", Message: "Password must be at least 6 characters", StatusCode: http.StatusBadRequest}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrInvalidCategory = &AppError{Code: "INVALID_CATEGORY", Message: "Unknown category", StatusCode: http.StatusBadRequest}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidRecurrence   = &AppError{Code: "INVALID_RECURRENCE", Message: "Recurring transactions require a frequency and one-off transactions must not have one", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound    = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrInvalidAllocation = &AppError{Code: "INVALID_ALLOCATION", Message: "Provide exactly one of allocated or percentage", StatusCode: http.StatusBadRequest}
)

// Email errors.
var (
	ErrTemplateNotFound    = &AppError{Code: "TEMPLATE_NOT_FOUND", Message: "Email template not found or inactive", StatusCode: http.StatusNotFound}
	ErrDuplicateTemplate   = &AppError{Code: "DUPLICATE_TEMPLATE", Message: "A template with this key already exists", StatusCode: http.StatusConflict}
	ErrEmailNotConfigured  = &AppError{Code: "EMAIL_NOT_CONFIGURED", Message: "Email service is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrEmailDisabled       = &AppError{Code: "EMAIL_DISABLED", Message: "Email sending is disabled", StatusCode: http.StatusServiceUnavailable}
	ErrEmailDeliveryFailed = &AppError{Code: "EMAIL_DELIVERY_FAILED", Message: "Failed to send email", StatusCode: http.StatusBadGateway}
)
