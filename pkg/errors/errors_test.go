package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeObjectNotFound, "no such object").WithKey("geovision/u1/p1/project.json")
	assert.Equal(t, "OBJECT_NOT_FOUND: no such object (key=geovision/u1/p1/project.json)", err.Error())

	bare := New(ErrCodeAccessDenied, "credentials rejected")
	assert.Equal(t, "ACCESS_DENIED: credentials rejected", bare.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(ErrCodeAnnotationTimeout, "no annotation after %dms", 2000).WithKey("a/b/c.txt")
	wrapped := fmt.Errorf("capture failed: %w", err)

	assert.True(t, stderrors.Is(wrapped, New(ErrCodeAnnotationTimeout, "")))
	assert.False(t, stderrors.Is(wrapped, New(ErrCodeObjectNotFound, "")))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := New(ErrCodeStoreUnavailable, "put failed").WithCause(cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		denied    bool
		retryable bool
	}{
		{"not found", New(ErrCodeObjectNotFound, "missing"), true, false, false},
		{"access denied", New(ErrCodeAccessDenied, "no"), false, true, false},
		{"store unavailable", New(ErrCodeStoreUnavailable, "down"), false, false, true},
		{"wrapped not found", fmt.Errorf("outer: %w", New(ErrCodeObjectNotFound, "missing")), true, false, false},
		{"plain error", stderrors.New("boom"), false, false, false},
		{"nil code", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.denied, IsAccessDenied(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidAgentType, CodeOf(New(ErrCodeInvalidAgentType, "bad agent")))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("untyped")))
}
