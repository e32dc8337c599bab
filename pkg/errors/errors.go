package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code onto the status the API answers with.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrValidation, ErrInsufficientPoints, ErrExpiredOffer, ErrLimitReached:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnauthorized
	ErrInsufficientPoints
	ErrExpiredOffer
	ErrLimitReached
	ErrConflict
	ErrInternal
)

func Validation(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// NotAvailable reports a resource that exists but cannot be used.
func NotAvailable(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not available", resource),
	}
}

func InsufficientPoints(available, requested int) *AppError {
	return &AppError{
		Code:    ErrInsufficientPoints,
		Message: fmt.Sprintf("insufficient points: %d available, %d requested", available, requested),
	}
}

func ExpiredOffer(message string) *AppError {
	return &AppError{Code: ErrExpiredOffer, Message: message}
}

func LimitReached(message string) *AppError {
	return &AppError{Code: ErrLimitReached, Message: message}
}

func Conflict(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: fmt.Sprintf("%s was modified concurrently, please retry", resource),
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// CodeOf returns the code of the first AppError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
