package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(CodeLLM, "completion failed", cause)

	require.EqualError(t, err, "completion failed: dial tcp: timeout")
	require.ErrorIs(t, err, cause)
	require.True(t, IsCode(err, CodeLLM))
	require.False(t, IsCode(err, CodeFAQ))
}

func TestCodeOfFindsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("startup: %w", Wrap(CodeSourceAuth, "token rejected", nil))
	require.Equal(t, CodeSourceAuth, CodeOf(err))
	require.Equal(t, "", CodeOf(errors.New("plain")))
}
