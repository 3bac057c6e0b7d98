package nonce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	i := NewIssuer("secret", time.Minute)
	token, err := i.Issue()
	require.NoError(t, err)
	assert.True(t, i.Verify(token))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a", time.Minute).Issue()
	require.NoError(t, err)
	assert.False(t, NewIssuer("secret-b", time.Minute).Verify(token))
}

func TestVerifyRejectsExpired(t *testing.T) {
	i := NewIssuer("secret", -time.Minute)
	token, err := i.Issue()
	require.NoError(t, err)
	assert.False(t, i.Verify(token))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	i := NewIssuer("secret", time.Minute)
	assert.False(t, i.Verify(""))
	assert.False(t, i.Verify("not-a-token"))
}
