package s3

import (
	stderrors "errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

// translateError maps SDK failures onto the structured error codes. Anything
// not recognizably a missing object or a permission failure is classified as
// STORE_UNAVAILABLE, which marks it retryable.
func translateError(key string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return errors.New(errors.ErrCodeObjectNotFound, "object does not exist").
				WithKey(key).WithCause(err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return errors.New(errors.ErrCodeAccessDenied, "access denied by object store").
				WithKey(key).WithCause(err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if stderrors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return errors.New(errors.ErrCodeObjectNotFound, "object does not exist").
				WithKey(key).WithCause(err)
		case http.StatusForbidden:
			return errors.New(errors.ErrCodeAccessDenied, "access denied by object store").
				WithKey(key).WithCause(err)
		}
	}

	return errors.New(errors.ErrCodeStoreUnavailable, "object store request failed").
		WithKey(key).WithCause(err)
}

// deleteEntryError maps one per-key entry from a batch-delete response.
func deleteEntryError(e s3types.Error) error {
	key := aws.ToString(e.Key)
	msg := aws.ToString(e.Message)
	switch aws.ToString(e.Code) {
	case "NoSuchKey", "NotFound":
		return errors.New(errors.ErrCodeObjectNotFound, msg).WithKey(key)
	case "AccessDenied":
		return errors.New(errors.ErrCodeAccessDenied, msg).WithKey(key)
	default:
		return errors.New(errors.ErrCodeStoreUnavailable, msg).WithKey(key)
	}
}
