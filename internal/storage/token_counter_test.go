package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountTokens(t *testing.T) {
	empty, err := CountTokens(nil)
	require.NoError(t, err)
	require.Zero(t, empty)

	one, err := CountTokens([]Message{{Role: RoleUser, Content: "hello"}})
	require.NoError(t, err)
	require.Equal(t, 1+perMessageOverhead, one)

	two, err := CountTokens([]Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hello"},
	})
	require.NoError(t, err)
	require.Equal(t, 2*one, two)
}

func TestCacheKey_Stable(t *testing.T) {
	a := []Message{{Role: RoleUser, Content: "hi"}}
	b := []Message{{Role: RoleUser, Content: "hi"}}
	c := []Message{{Role: RoleUser, Content: "bye"}}

	require.Equal(t, cacheKey(a), cacheKey(b))
	require.NotEqual(t, cacheKey(a), cacheKey(c))
	require.Contains(t, cacheKey(a), "token_count:")
}
