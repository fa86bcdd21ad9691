package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	assert.Equal(t, "[not_connected] not connected to a database",
		New(ErrKindNotConnected, "not connected to a database").Error())
	assert.Equal(t, "[connection_failed] failed to connect: dial tcp: connection refused",
		Wrap(ErrKindConnectionFailed, "failed to connect", cause).Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(ErrKindSerialization, "bad file", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsSerialization(err))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		kind ErrKind
		pred func(error) bool
	}{
		{ErrKindNotFound, IsNotFound},
		{ErrKindTimeout, IsTimeout},
		{ErrKindConnectionFailed, IsConnectionFailed},
		{ErrKindQueryFailed, IsQueryFailed},
		{ErrKindInvalidInput, IsInvalidInput},
		{ErrKindPermissionDenied, IsPermissionDenied},
		{ErrKindNotConnected, IsNotConnected},
		{ErrKindSerialization, IsSerialization},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.True(t, tt.pred(New(tt.kind, "x")))
			assert.False(t, tt.pred(errors.New("plain")))
			assert.False(t, tt.pred(nil))
		})
	}
}

func TestNotConnectedIsNotConnectionFailure(t *testing.T) {
	err := New(ErrKindNotConnected, "not connected")
	assert.False(t, IsConnectionFailed(err))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
}
