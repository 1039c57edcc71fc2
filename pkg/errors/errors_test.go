package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapUpstreamTimeout(t *testing.T) {
	err := WrapUpstream(CodeEmbedding, "embedding failed", fmt.Errorf("post: %w", context.DeadlineExceeded))
	require.True(t, IsCode(err, CodeUpstreamTimeout))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWrapUpstreamKeepsCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapUpstream(CodeVectorSearch, "vector query failed", cause)
	require.True(t, IsCode(err, CodeVectorSearch))
	require.Equal(t, CodeVectorSearch, CodeOf(err))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "vector query failed: connection refused", err.Error())
}

func TestCodeOfPlainError(t *testing.T) {
	require.Empty(t, CodeOf(errors.New("boom")))
	require.False(t, IsCode(nil, CodeLLM))
}
