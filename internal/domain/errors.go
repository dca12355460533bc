package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the transport layer can pick a status code
type ErrorKind int

const (
	KindUnknown        ErrorKind = iota // Anything unclassified, surfaces as 500
	KindAuthorization                   // Role mismatch
	KindValidation                      // Missing or malformed input
	KindConflict                        // Uniqueness violation
	KindNotFound                        // Unknown id
	KindInfrastructure                  // Store contention or timeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// AppError carries a user-facing message and the underlying cause
type AppError struct {
	Kind    ErrorKind
	Message string // Safe to show to the caller
	Err     error  // Internal cause, may be nil
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewError builds an AppError of the given kind
func NewError(kind ErrorKind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: cause}
}

func AuthorizationError(message string) *AppError {
	return NewError(KindAuthorization, message, ErrForbidden)
}

func ValidationError(message string) *AppError {
	return NewError(KindValidation, message, ErrInvalidInput)
}

func ConflictError(message string, cause error) *AppError {
	return NewError(KindConflict, message, cause)
}

func NotFoundError(message string, cause error) *AppError {
	return NewError(KindNotFound, message, cause)
}

func InfrastructureError(message string, cause error) *AppError {
	return NewError(KindInfrastructure, message, cause)
}

// KindOf returns the kind of the first AppError in err's chain
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Sentinel causes
var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	ErrPhoneTaken = errors.New("phone already registered")
	ErrEmailTaken = errors.New("email already registered")
	ErrSlugTaken  = errors.New("slug already in use")
	ErrDuplicate  = errors.New("duplicate record")

	ErrUserNotFound     = errors.New("user not found")
	ErrUserInactive     = errors.New("user account is inactive")
	ErrSubadminNotFound = errors.New("subadmin not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")

	ErrInsufficientStock = errors.New("insufficient stock")

	ErrIllegalTransition = errors.New("illegal order status transition")

	ErrStoreBusy = errors.New("store busy")
)

// OTP errors
var (
	ErrOTPNotFound    = errors.New("otp not found")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrOTPInvalid     = errors.New("invalid otp code")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
	ErrOTPThrottled   = errors.New("otp requested too soon")
)
