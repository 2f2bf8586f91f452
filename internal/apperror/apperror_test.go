package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/school-inventory-service/pkg/lock"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("distribute: %w", InsufficientStock("only %d left", 2))

	assert.Equal(t, KindInsufficientStock, KindOf(err))
	assert.True(t, Is(err, KindInsufficientStock))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, KindUnknown, KindOf(errors.New("db down")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"validation", Validation("bad"), codes.InvalidArgument},
		{"not found", NotFound("missing"), codes.NotFound},
		{"state conflict", StateConflict("wrong state"), codes.FailedPrecondition},
		{"insufficient stock", InsufficientStock("short"), codes.ResourceExhausted},
		{"duplicate pending", DuplicatePending("dup"), codes.AlreadyExists},
		{"forbidden", Forbidden("no"), codes.PermissionDenied},
		{"lock busy", fmt.Errorf("x: %w", lock.ErrNotAcquired), codes.Unavailable},
		{"unavailable", Wrap(KindUnavailable, lock.ErrNotAcquired, "item busy"), codes.Unavailable},
		{"storage", errors.New("connection refused"), codes.Internal},
		{"already status", status.Error(codes.Unauthenticated, "who"), codes.Unauthenticated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(ToStatus(tc.err)))
		})
	}

	assert.NoError(t, ToStatus(nil))
	st, _ := status.FromError(ToStatus(errors.New("password=secret")))
	assert.Equal(t, "internal error", st.Message())
}
