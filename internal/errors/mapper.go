package errors

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Map converts engine and infra errors into gRPC-friendly status errors for the
// surrounding transport layer. Keeps the service layer clean by centralizing
// error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, ErrSelfAction):
		return status.Error(codes.InvalidArgument, ErrSelfAction.Error())

	case errors.Is(err, ErrInvalidFilter), errors.Is(err, ErrInvalidCursor):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, ErrDuplicateAction):
		return status.Error(codes.AlreadyExists, ErrDuplicateAction.Error())

	case errors.Is(err, ErrNoRecentAction), errors.Is(err, ErrUndoExpired):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		// Store-level transient failures surface as retryable unavailability.
		return status.Error(codes.Unavailable, err.Error())
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in the service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// AlreadyExists creates a gRPC AlreadyExists error.
func AlreadyExists(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}
