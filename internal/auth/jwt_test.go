package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret-key-for-testing-only", 30*24*time.Hour)

	token, err := tm.GenerateToken(&User{ID: 42, Email: "a@b.c", Role: RoleMember})
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.Type)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), token.ExpiresAt, 2*time.Second)

	claims, err := tm.ValidateToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, RoleMember, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateToken_EmptyUserID(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	_, err := tm.GenerateToken(&User{})
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).GenerateToken(&User{ID: 1})
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ValidateToken(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }

	token, err := tm.GenerateToken(&User{ID: 1})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ValidateToken(token.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
