package errors

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

func codeOf(t *testing.T, err error) codes.Code {
	t.Helper()
	st, ok := status.FromError(err)
	if !ok {
		t.Fatalf("not a status error: %v", err)
	}
	return st.Code()
}

func TestMapDomainErrors(t *testing.T) {
	assert.NoError(t, Map(nil))

	assert.Equal(t, codes.NotFound, codeOf(t, Map(ErrNotFound)))
	assert.Equal(t, codes.NotFound, codeOf(t, Map(gorm.ErrRecordNotFound)))
	assert.Equal(t, codes.InvalidArgument, codeOf(t, Map(ErrSelfAction)))
	assert.Equal(t, codes.InvalidArgument, codeOf(t, Map(ErrInvalidFilter)))
	assert.Equal(t, codes.InvalidArgument, codeOf(t, Map(ErrInvalidCursor)))
	assert.Equal(t, codes.AlreadyExists, codeOf(t, Map(ErrDuplicateAction)))
	assert.Equal(t, codes.FailedPrecondition, codeOf(t, Map(ErrNoRecentAction)))
	assert.Equal(t, codes.FailedPrecondition, codeOf(t, Map(ErrUndoExpired)))
}

func TestMapWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("target 42: %w", ErrNotFound)
	assert.Equal(t, codes.NotFound, codeOf(t, Map(wrapped)))
}

func TestMapContextAndTransientErrors(t *testing.T) {
	assert.Equal(t, codes.DeadlineExceeded, codeOf(t, Map(context.DeadlineExceeded)))
	assert.Equal(t, codes.Canceled, codeOf(t, Map(context.Canceled)))

	// anything else is a retryable store failure
	assert.Equal(t, codes.Unavailable, codeOf(t, Map(io.ErrUnexpectedEOF)))
}
