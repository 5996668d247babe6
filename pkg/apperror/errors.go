package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Workflow (WF) ----
// The three rejection classes every lifecycle operation can produce,
// worded so the caller can tell "not currently possible" (state) from
// "you forgot to provide X" (field); role failures live under SEC.

// ErrInvalidTransition: the requested state change is not reachable
// from the entity's current state (including any change out of a
// terminal state). The stored state is unchanged.
func ErrInvalidTransition(entity string, from, to string) *AppError {
	return New("WF_001",
		fmt.Sprintf("%s cannot move from %q to %q", entity, from, to),
		http.StatusBadRequest)
}

// ErrMissingField: a transition-specific required input is absent or
// invalid (rejection without a reason, seller KYC approval without a
// plan, negative margin).
func ErrMissingField(field string) *AppError {
	return New("WF_002", fmt.Sprintf("required field %q is missing or invalid", field), http.StatusBadRequest)
}

// Validation returns a WF_002-class error with a custom message.
func Validation(message string) *AppError {
	return New("WF_002", message, http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("WF_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrDuplicateSubmission: the entity already exists (one KYC
// submission per user, unique SKU, unique email).
func ErrDuplicateSubmission(entity string) *AppError {
	return New("WF_004", fmt.Sprintf("%s already exists", entity), http.StatusConflict)
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidCredentials() *AppError {
	return New("SEC_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("SEC_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ErrInsufficientRole: the acting role may not perform this operation.
func ErrInsufficientRole() *AppError {
	return New("SEC_002", "Your role may not perform this action", http.StatusForbidden)
}

func ErrAccountBlocked() *AppError {
	return New("SEC_003", "Account is blocked", http.StatusForbidden)
}

func ErrAccountNotActive() *AppError {
	return New("SEC_003", "Account is not active", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
