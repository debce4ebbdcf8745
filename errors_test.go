package veldt_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veldt"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := veldt.NewNotFoundError("user")
		assert.Equal(t, "veldt: user not found", err.Error())

		err = veldt.NewNotFoundErrorWithID("user", "u1")
		assert.Equal(t, "veldt: user not found (id=u1)", err.Error())
		assert.Equal(t, "user", err.Model())
		assert.Equal(t, "u1", err.ID())
	})

	t.Run("Is", func(t *testing.T) {
		err := veldt.NewNotFoundError("tag")
		assert.True(t, errors.Is(err, veldt.ErrNotFound))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := veldt.NewNotFoundError("order")
		assert.True(t, veldt.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("find_by_id: %w", err)
		assert.True(t, veldt.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, veldt.IsNotFound(veldt.ErrNotFound))

		// Non-matching error
		assert.False(t, veldt.IsNotFound(errors.New("other error")))
		assert.False(t, veldt.IsNotFound(nil))
	})
}

func TestArityError(t *testing.T) {
	err := veldt.NewArityError("UPDATE `user` SET `name` = 'a';", 3)
	assert.True(t, veldt.IsArityError(err))
	assert.Contains(t, err.Error(), "expected 1 affected row, got 3")
	assert.Contains(t, err.Error(), "UPDATE `user`")
	assert.False(t, veldt.IsArityError(errors.New("other error")))
	assert.False(t, veldt.IsArityError(nil))
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("invalid syntax")
	err := veldt.NewDecodeError("age", "abc", cause)
	assert.True(t, veldt.IsDecodeError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `decoding field "age" from "abc"`)
}

func TestValidationError(t *testing.T) {
	err := veldt.NewValidationError("limit", "must be nonnegative")
	require.True(t, veldt.IsValidationError(err))
	assert.Contains(t, err.Error(), "limit(must be nonnegative)")

	err.Record("offset", "must be an integer")
	assert.Len(t, err.Fields, 2)
}

func TestRollbackError(t *testing.T) {
	cause := errors.New("disk full")
	err := &veldt.RollbackError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "veldt: rollback failed: disk full", err.Error())
}
