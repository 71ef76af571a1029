package vaulterr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("/a/b.pdf", "blob")
	wrapped := fmt.Errorf("read failed: %w", err)

	assert.True(t, errors.Is(wrapped, NotFound))
	assert.False(t, errors.Is(wrapped, Conflict))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInvalidMove(wrapped))
}

func TestError_PartialFailureCarriesPaths(t *testing.T) {
	err := NewPartialFailureError("/clients/X", []Failure{
		{Path: "/clients/X/a.pdf", Err: errors.New("boom")},
		{Path: "/clients/X/b.pdf", Err: errors.New("boom")},
	})

	assert.True(t, IsPartialFailure(err))
	assert.Equal(t, []string{"/clients/X/a.pdf", "/clients/X/b.pdf"}, err.FailedPaths())
	assert.Contains(t, err.Error(), "2 failed")
}

func TestError_RemoteUnavailableUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewRemoteUnavailableError("s3 get object", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsRemoteUnavailable(err))
	assert.Equal(t, ErrorCode(0), CodeOf(cause))
}
