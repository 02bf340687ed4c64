package firebase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityFromClaims(t *testing.T) {
	identity := identityFromClaims("u1", map[string]interface{}{
		"email":          "ana@campus.edu",
		"name":           "Ana",
		"email_verified": true,
	})

	assert.Equal(t, &Identity{UID: "u1", Email: "ana@campus.edu", Name: "Ana", EmailVerified: true}, identity)
}

func TestIdentityFromClaimsIgnoresWrongTypes(t *testing.T) {
	identity := identityFromClaims("u1", map[string]interface{}{
		"email_verified": "yes",
		"name":           42,
	})

	assert.Equal(t, "u1", identity.UID)
	assert.False(t, identity.EmailVerified)
	assert.Empty(t, identity.Name)
}

func TestDevAuthClient(t *testing.T) {
	client := NewDevAuthClient()

	identity, err := client.VerifyToken(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.UID)
	assert.True(t, identity.EmailVerified)

	identity, err = client.VerifyToken(context.Background(), "bob:unverified")
	require.NoError(t, err)
	assert.Equal(t, "bob", identity.UID)
	assert.False(t, identity.EmailVerified)

	_, err = client.VerifyToken(context.Background(), "  ")
	assert.Error(t, err)
}

func TestDevAuthClientDeleteUser(t *testing.T) {
	assert.NoError(t, NewDevAuthClient().DeleteUser(context.Background(), "alice"))
}
