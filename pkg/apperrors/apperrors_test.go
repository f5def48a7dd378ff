package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(cause, CodeConflict, "User with this email already exists")

	require.ErrorIs(t, err, cause)
	require.True(t, HasCode(err, CodeConflict))
	require.False(t, HasCode(err, CodeNotFound))
	require.Contains(t, err.Error(), "duplicate key")
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "User not found")))
	require.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	require.Equal(t, CodeInternal, CodeOf(nil))
}

func TestMessageOfHidesCauses(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Wrap(cause, CodeInternal, "Failed to load user")
	require.Equal(t, "Failed to load user", MessageOf(err))

	// Plain errors never leak their text.
	require.Equal(t, "Internal server error", MessageOf(cause))
}

func TestNewf(t *testing.T) {
	err := Newf(CodeConflict, "Doctor with this %s already exists", "email")
	require.Equal(t, "Doctor with this email already exists", MessageOf(err))
}

func TestHasCodeThroughJoin(t *testing.T) {
	err := errors.Join(errors.New("first"), New(CodeUnauthorized, "nope"))
	require.True(t, HasCode(err, CodeUnauthorized))
}
