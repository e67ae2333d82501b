package ingesterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesWrappedError(t *testing.T) {
	err := Storage("storage.Open", errors.New("connection refused"))
	wrapped := fmt.Errorf("while opening adapter: %w", err)

	assert.True(t, Is(wrapped, KindStorage))
	assert.False(t, Is(wrapped, KindConfig))
}

func TestIs_FalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), KindStorage))
	assert.False(t, Is(nil, KindStorage))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(Config("config.Validate", errors.New("missing field"))))
}

func TestError_UnwrapRoundTrips(t *testing.T) {
	cause := errors.New("root cause")
	err := Data("params.Add", cause)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, KindData, e.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestCancel_HasNoWrappedCause(t *testing.T) {
	err := Cancel("pipeline.Run")
	assert.True(t, Is(err, KindCancelled))
	assert.Nil(t, errors.Unwrap(err))
}
