package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/auth"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(42, auth.RoleCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, auth.RoleCustomer, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	token, err := auth.NewTokenManager("secret-one", time.Hour).Issue(1, auth.RoleCustomer)
	require.NoError(t, err)

	_, err = auth.NewTokenManager("secret-two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue(1, auth.RoleAdmin)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_Verify_Garbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	_, err := tm.Verify("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
