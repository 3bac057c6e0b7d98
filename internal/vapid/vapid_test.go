package vapid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushpress/internal/db"
)

func TestEnsureKeysGeneratesOnce(t *testing.T) {
	m := NewManager(db.NewMemoryStore())

	first, err := m.EnsureKeys()
	require.NoError(t, err)
	require.True(t, first.Configured())

	second, err := m.EnsureKeys()
	require.NoError(t, err)
	assert.Equal(t, first, second, "EnsureKeys must be idempotent")
}

func TestEnsureKeysEncoding(t *testing.T) {
	m := NewManager(db.NewMemoryStore())

	keys, err := m.EnsureKeys()
	require.NoError(t, err)

	// base64url without padding, per the push transport requirements.
	for _, k := range []string{keys.Public, keys.Private} {
		assert.False(t, strings.ContainsAny(k, "+/="), "key %q must be raw base64url", k)
		assert.NotEmpty(t, k)
	}
	// An uncompressed P-256 point is 65 bytes -> 87 base64url chars.
	assert.Len(t, keys.Public, 87)
}

func TestRegenerateReplacesKeys(t *testing.T) {
	store := db.NewMemoryStore()
	m := NewManager(store)

	first, err := m.EnsureKeys()
	require.NoError(t, err)

	second, err := m.Regenerate()
	require.NoError(t, err)
	assert.NotEqual(t, first.Public, second.Public)

	stored, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestKeysUnconfigured(t *testing.T) {
	m := NewManager(db.NewMemoryStore())
	keys, err := m.Keys()
	require.NoError(t, err)
	assert.False(t, keys.Configured())
}
