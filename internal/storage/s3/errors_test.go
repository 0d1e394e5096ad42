package s3

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  errors.ErrorCode
		retryable bool
	}{
		{"no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, errors.ErrCodeObjectNotFound, false},
		{"head not found", &smithy.GenericAPIError{Code: "NotFound"}, errors.ErrCodeObjectNotFound, false},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, errors.ErrCodeAccessDenied, false},
		{"expired token", &smithy.GenericAPIError{Code: "ExpiredToken"}, errors.ErrCodeAccessDenied, false},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, errors.ErrCodeStoreUnavailable, true},
		{"plain error", fmt.Errorf("connection reset"), errors.ErrCodeStoreUnavailable, true},
		{"wrapped api error", fmt.Errorf("op failed: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}),
			errors.ErrCodeObjectNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError("some/key", tt.err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(got))
			assert.Equal(t, tt.retryable, errors.IsRetryable(got))
		})
	}

	assert.NoError(t, translateError("k", nil))
}

func TestDeleteEntryError(t *testing.T) {
	e := s3types.Error{
		Key:     aws.String("a/b.png"),
		Code:    aws.String("AccessDenied"),
		Message: aws.String("denied"),
	}
	err := deleteEntryError(e)
	assert.True(t, errors.IsAccessDenied(err))

	e.Code = aws.String("InternalError")
	assert.Equal(t, errors.ErrCodeStoreUnavailable, errors.CodeOf(deleteEntryError(e)))
}
