package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for every failure class of the fetch pipeline.
// Services return these (or the typed errors below), the controller maps
// them to an APIError payload with NewAPIError.
var (
	ErrUserNotFound      = errors.New("USER_NOT_FOUND")
	ErrInvalidCredential = errors.New("INVALID_CREDENTIAL")
	ErrValidation        = errors.New("VALIDATION_ERROR")
	ErrRateLimitReached  = errors.New("RATE_LIMIT_REACHED")
	ErrTooManyPages      = errors.New("PAGE_LIMIT_EXCEEDED")
	ErrNoReport          = errors.New("NO_REPORT")
)

// UpstreamError is any non-2xx Github answer that has no dedicated class
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("UPSTREAM_ERROR (status %d)", e.Status)
}

// TransportError is a network level failure, the request never got an answer
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "TRANSPORT_ERROR"
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is the payload returned to API consumers for any failed operation
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewAPIError converts a pipeline error into the single user visible message
// for it. Exactly one of these is displayed at a time by consumers.
func NewAPIError(errReason error) APIError {
	var upstreamErr *UpstreamError
	var transportErr *TransportError

	switch {
	case errors.Is(errReason, ErrUserNotFound):
		return APIError{
			Code:    "USER_NOT_FOUND",
			Message: "User not found.",
		}

	case errors.Is(errReason, ErrInvalidCredential):
		return APIError{
			Code:    "INVALID_CREDENTIAL",
			Message: "github rejected the configured token. remove it or supply a valid one and try again",
		}

	case errors.Is(errReason, ErrValidation):
		return APIError{
			Code:    "VALIDATION_ERROR",
			Message: "Please enter a username.",
		}

	case errors.Is(errReason, ErrRateLimitReached):
		return APIError{
			Code:    "RATE_LIMIT_REACHED",
			Message: "github rate limit reached. consider using a token to increase the limit or wait few minutes and try again",
		}

	case errors.Is(errReason, ErrTooManyPages), errors.As(errReason, &upstreamErr), errors.As(errReason, &transportErr):
		return APIError{
			Code:    "FETCH_ERROR",
			Message: "failed to fetch profile or repositories. try again in a few minutes",
		}

	default:
		return APIError{
			Code:    "GENERIC_ERROR",
			Message: "internal server error. contact our support with the reason code for assistance",
		}
	}
}

// HTTPStatusFor maps a pipeline error to the status code the API answers with
func HTTPStatusFor(errReason error) int {
	var upstreamErr *UpstreamError

	switch {
	case errors.Is(errReason, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(errReason, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(errReason, ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(errReason, ErrRateLimitReached):
		return http.StatusTooManyRequests
	case errors.As(errReason, &upstreamErr), errors.Is(errReason, ErrTooManyPages):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
