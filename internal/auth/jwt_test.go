package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/model"
)

var testUser = &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}

func TestGenerateAndValidateToken(t *testing.T) {
	now := time.Now()
	token, err := GenerateToken("test-secret-key", testUser, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken("test-secret-key", token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(TokenExpiry), claims.ExpiresAt.Time, time.Second)
}

func TestTokenIDsAreUnique(t *testing.T) {
	now := time.Now()
	a, err := GenerateToken("secret", testUser, now)
	require.NoError(t, err)
	b, err := GenerateToken("secret", testUser, now)
	require.NoError(t, err)

	ca, err := ValidateToken("secret", a)
	require.NoError(t, err)
	cb, err := ValidateToken("secret", b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret1", testUser, time.Now())
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	token, err := GenerateToken("secret", testUser, time.Now().Add(-TokenExpiry-time.Minute))
	require.NoError(t, err)

	_, err = ValidateToken("secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
		ID: "x", Issuer: Issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ValidateToken("secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
