package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	plain := New("X", KindValidation, "bad input")
	assert.Equal(t, "bad input", plain.Error())

	wrapped := Wrap(errors.New("eof"), "X", KindTransport, "request failed")
	assert.Equal(t, "request failed: eof", wrapped.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrTransport.Code, KindTransport, "request failed")
	assert.ErrorIs(t, err, cause)
}

func TestCloneOverridesMessage(t *testing.T) {
	clone := Clone(ErrApplication, "no fee data for student")
	assert.Equal(t, "no fee data for student", clone.Message)
	assert.Equal(t, ErrApplication.Code, clone.Code)
	// The original is untouched.
	assert.Equal(t, "server reported an error", ErrApplication.Message)

	same := Clone(ErrApplication, "")
	assert.Equal(t, ErrApplication.Message, same.Message)
}

func TestCloneMatchesOriginalWithErrorsIs(t *testing.T) {
	clone := Clone(ErrSubmissionPending, "wait for approvals")
	assert.ErrorIs(t, clone, ErrSubmissionPending)
	assert.NotErrorIs(t, clone, ErrInvalidAmount)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := FromError(ErrInvalidDate)
	assert.Equal(t, ErrInvalidDate.Code, typed.Code)

	// Unknown errors normalise to transport.
	plain := FromError(errors.New("dial tcp: timeout"))
	require.NotNil(t, plain)
	assert.Equal(t, KindTransport, plain.Kind)

	// Typed errors survive fmt wrapping.
	wrapped := FromError(fmt.Errorf("loading fees: %w", ErrExceedsPending))
	assert.Equal(t, ErrExceedsPending.Code, wrapped.Code)
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(nil))
	assert.False(t, Retryable(ErrInvalidAmount))
	assert.True(t, Retryable(ErrTransport))
	assert.True(t, Retryable(ErrApplication))
	assert.True(t, Retryable(Clone(ErrApplication, "server said no")))
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(ErrMissingFields, KindValidation))
	assert.False(t, IsKind(ErrMissingFields, KindTransport))
	assert.True(t, IsKind(errors.New("raw"), KindTransport))
	assert.False(t, IsKind(nil, KindValidation))
}
