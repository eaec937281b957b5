package caserun

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	inner := errors.New("registry file is unreadable")
	err := NewRuntimeError(inner)

	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "runtime error")

	// Wrapping must not hide the type.
	wrapped := fmt.Errorf("starting service: %w", err)
	assert.True(t, IsRuntimeError(wrapped))
}

func TestTestFailureError(t *testing.T) {
	err := NewTestFailureError("2 cases failed")

	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "2 cases failed")

	wrapped := fmt.Errorf("run finished: %w", err)
	assert.True(t, IsTestFailureError(wrapped))
}

func TestErrorChecksOnNil(t *testing.T) {
	assert.False(t, IsRuntimeError(nil))
	assert.False(t, IsTestFailureError(nil))
}

func TestErrorChecksOnPlainError(t *testing.T) {
	err := errors.New("something else")
	assert.False(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
}
