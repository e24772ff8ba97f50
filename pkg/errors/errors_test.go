package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("booking: %w", SlotConflict(nil))

	assert.Equal(t, ErrConflict, CodeOf(wrapped))
	assert.Equal(t, ErrNotFound, CodeOf(NewNotFound("doctor", nil)))
	assert.Equal(t, ErrInternal, CodeOf(stderrors.New("boom")))
	assert.True(t, Is(wrapped, ErrConflict))
	assert.False(t, Is(nil, ErrConflict))
}

func TestRetryableOnlyForInternal(t *testing.T) {
	assert.True(t, NewInternal(stderrors.New("db down")).Retryable())
	assert.False(t, NewBadRequest("bad", nil).Retryable())
	assert.False(t, Unauthorized(nil).Retryable())
	assert.False(t, SlotConflict(nil).Retryable())
	assert.False(t, NewNotFound("appointment", nil).Retryable())
}

func TestSlugs(t *testing.T) {
	cases := map[*AppError]string{
		NewNotFound("doctor", nil):  "NOT_FOUND",
		NewBadRequest("x", nil):     "INVALID_INPUT",
		Unauthorized(nil):           "UNAUTHORIZED",
		NewInternal(nil):            "INTERNAL_ERROR",
		SlotConflict(nil):           "CONFLICT",
		NewConflict("taken", nil):   "CONFLICT",
	}
	for err, slug := range cases {
		assert.Equal(t, slug, err.Slug())
	}
}

func TestAsWrapsPlainErrors(t *testing.T) {
	cause := stderrors.New("connection reset")
	appErr := As(cause)

	assert.Equal(t, ErrInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Equal(t, "internal server error: connection reset", appErr.Error())
}
