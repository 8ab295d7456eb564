package services

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"

	"github.com/damacus/ironshelf/internal/errs"
)

// mapError turns an SDK error into an *errs.Error, keeping the store's
// error code. A nil err stays nil and an *errs.Error passes through.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindTimeout, msg, err)
	}

	code := storeCode(err)
	if code != "" {
		return errs.Wrap(kindForCode(code), msg, err).WithCode(code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errs.Wrap(errs.KindTimeout, msg, err)
	}
	return errs.Wrap(errs.KindConnectionFailed, msg, err)
}

// storeCode extracts the S3 error code from either SDK.
func storeCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "" {
		return resp.Code
	}
	return ""
}

func kindForCode(code string) errs.Kind {
	switch code {
	case "NoSuchBucket", "NoSuchKey", "NoSuchBucketPolicy", "NotFound", "NoSuchUpload":
		return errs.KindNotFound
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled", "ExpiredToken":
		return errs.KindPermissionDenied
	case "BucketAlreadyExists", "BucketAlreadyOwnedByYou", "BucketNotEmpty", "OperationAborted":
		return errs.KindConflict
	case "InvalidBucketName", "InvalidObjectName", "XMinioInvalidObjectName", "KeyTooLongError",
		"InvalidArgument", "MalformedPolicy", "MalformedACLError", "EntityTooLarge":
		return errs.KindInvalidInput
	case "RequestTimeout", "RequestTimeTooSkewed", "SlowDown":
		return errs.KindTimeout
	default:
		return errs.KindConnectionFailed
	}
}
