package apperror

import (
	"errors"

	"github.com/fekuna/school-inventory-service/pkg/lock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus maps an engine error onto a gRPC status. Unclassified errors become Internal
// without leaking their text.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch KindOf(err) {
	case KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case KindStateConflict:
		return status.Error(codes.FailedPrecondition, err.Error())
	case KindInsufficientStock:
		return status.Error(codes.ResourceExhausted, err.Error())
	case KindDuplicatePending:
		return status.Error(codes.AlreadyExists, err.Error())
	case KindForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case KindUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	}

	if errors.Is(err, lock.ErrNotAcquired) {
		return status.Error(codes.Unavailable, "system busy, please retry")
	}
	return status.Error(codes.Internal, "internal error")
}
