package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("TestError", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErr)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrFirstLevel)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)

		err := errors.New("error")
		ErrWrappedErr = ErrFirstLevel.Err(err)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)

		ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, err)
	})

	t.Run("sentinels stay untouched", func(t *testing.T) {
		ErrSentinel := New("sentinel").SetStatusCode(401)
		derived := ErrSentinel.Msg("changed").Err(errors.New("cause"))

		assert.Equal(t, "sentinel", ErrSentinel.Error())
		assert.Empty(t, ErrSentinel.Unwrap())
		assert.Equal(t, "changed", derived.Error())
		assert.Equal(t, 401, derived.StatusCode())
		assert.ErrorIs(t, derived, ErrSentinel)
	})

	t.Run("expand", func(t *testing.T) {
		err := New("request failed").Err(errors.New("a"), errors.New("b")).SetExpandError(true)
		assert.Equal(t, "request failed: a;b", err.ErrorAll())
		assert.Equal(t, "request failed", err.Error())
	})

	t.Run("wrapped by pkg/errors", func(t *testing.T) {
		ErrSentinel := New("sentinel")
		wrapped := errors.Wrap(ErrSentinel.Msg("detail"), "context")
		assert.ErrorIs(t, wrapped, ErrSentinel)
	})
}
