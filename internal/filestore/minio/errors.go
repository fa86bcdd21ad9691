package minio

import (
	"context"
	"errors"
	"net/http"

	"github.com/koustreak/dbee/internal/errs"
	miniogo "github.com/minio/minio-go/v7"
)

// mapError translates a MinIO SDK error into a *errs.Error.
// S3 error codes are checked before the HTTP status so that a NoSuchKey
// reads as NotFound whatever status accompanies it.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var resp miniogo.ErrorResponse
	if errors.As(err, &resp) {
		if kind, ok := classifyCode(resp.Code); ok {
			return errs.Wrap(kind, msg, err)
		}
		switch resp.StatusCode {
		case http.StatusNotFound:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case http.StatusBadRequest:
			return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
		}
	}

	// Anything else: a generic connection / I/O failure
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

func classifyCode(code string) (errs.ErrKind, bool) {
	switch code {
	case "NoSuchBucket", "NoSuchKey":
		return errs.ErrKindNotFound, true
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errs.ErrKindPermissionDenied, true
	case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError":
		return errs.ErrKindInvalidInput, true
	case "RequestTimeout", "SlowDown":
		return errs.ErrKindTimeout, true
	}
	return errs.ErrKindUnknown, false
}
