package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword("s3cret", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	iss := NewTokenIssuer("test-secret", time.Hour)
	tok, err := iss.Issue("u-1", "alice@example.com", "Alice", RoleManager)
	require.NoError(t, err)

	claims, err := iss.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, RoleManager, claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("secret-a", time.Hour).Issue("u-1", "a@b.c", "A", RoleViewer)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Validate(tok)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Nanosecond)
	tok, err := iss.Issue("u-1", "a@b.c", "A", RoleViewer)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = iss.Validate(tok)
	assert.Error(t, err)
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleHas(RoleAdmin, CapManageUsers))
	assert.True(t, RoleHas(RoleManager, CapImportData))
	assert.False(t, RoleHas(RoleManager, CapManageUsers))
	assert.True(t, RoleHas(RoleViewer, CapViewReports))
	assert.False(t, RoleHas(RoleViewer, CapManageIssues))
	assert.False(t, RoleHas("ghost", CapViewReports))

	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole("superuser"))

	// Every manager capability is also an admin capability.
	for _, c := range Capabilities(RoleManager) {
		assert.True(t, RoleHas(RoleAdmin, c))
	}
}

func TestActorContext(t *testing.T) {
	claims := &Claims{UserID: "u-9", Role: RoleAdmin}
	ctx := WithActor(context.Background(), claims)
	assert.Equal(t, claims, ActorFrom(ctx))
	assert.Nil(t, ActorFrom(context.Background()))
}
