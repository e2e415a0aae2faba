package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes carried in AppError.Code and in failed extraction results.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnavailableProvider = "UNAVAILABLE_PROVIDER"
	CodeProviderCallFailed  = "PROVIDER_CALL_FAILED"
	CodeAllProvidersFailed  = "ALL_PROVIDERS_FAILED"
	CodeRetryLimit          = "RETRY_LIMIT"
)

// Common application errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnavailableProvider = errors.New("provider unavailable")
	ErrProviderCallFailed  = errors.New("provider call failed")
	ErrAllProvidersFailed  = errors.New("all providers failed")
	ErrNotFound            = errors.New("resource not found")
	ErrRetryLimit          = errors.New("retry limit reached")
	ErrInternal            = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return NewAppError(CodeInvalidInput, message, ErrInvalidInput)
}

func UnavailableProvider(name string) *AppError {
	return NewAppError(CodeUnavailableProvider, fmt.Sprintf("provider %q is not available", name), ErrUnavailableProvider)
}

func ProviderCallFailed(name string, cause error) *AppError {
	return NewAppError(CodeProviderCallFailed, name, fmt.Errorf("%w: %w", ErrProviderCallFailed, cause))
}

// GRPCCode maps the error taxonomy onto gRPC status codes.
func GRPCCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, ErrNotFound):
		return codes.NotFound
	case errors.Is(err, ErrRetryLimit):
		return codes.FailedPrecondition
	case errors.Is(err, ErrUnavailableProvider):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, ErrProviderCallFailed), errors.Is(err, ErrAllProvidersFailed):
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// ToStatus converts err into a gRPC status error, keeping the message.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(GRPCCode(err), err.Error())
}
