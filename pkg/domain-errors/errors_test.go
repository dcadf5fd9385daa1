package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeNotFound, "sak not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches inner code through fmt wrapping", func(t *testing.T) {
		inner := New(CodeConflict, "locked")
		err := Wrap(fmt.Errorf("repoint: %w", inner), CodeBadRequest, "cannot repoint")
		assert.True(t, HasCode(err, CodeBadRequest))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "storage unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Equal(t, "storage unavailable", MessageOf(err))
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}
