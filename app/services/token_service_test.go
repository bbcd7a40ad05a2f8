package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService(t *testing.T) TokenService {
	t.Helper()
	service, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false, // useRSAKeys
		"",    // privateKeyPEM
		"",    // publicKeyPEM
		testSecret,
		nil,
	)
	require.NoError(t, err)
	return service
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		useRSAKeys  bool
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", secretKey: testSecret},
		{name: "missing secret key", secretKey: "", expectError: true},
		{name: "rsa without keys", useRSAKeys: true, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(time.Minute, time.Hour, "iss", "aud", tt.useRSAKeys, "", "", tt.secretKey, nil)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()

	accessToken, refreshToken, err := service.GenerateTokens(123, "agent")
	require.NoError(t, err)
	assert.NotEqual(t, accessToken, refreshToken)

	tests := []struct {
		name      string
		token     string
		tokenType string
	}{
		{name: "access token", token: accessToken, tokenType: TokenTypeAccess},
		{name: "refresh token", token: refreshToken, tokenType: TokenTypeRefresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(ctx, tt.token)
			require.NoError(t, err)
			assert.Equal(t, uint(123), claims.UserID)
			assert.Equal(t, "agent", claims.Role)
			assert.Equal(t, tt.tokenType, claims.TokenType)
			assert.NotEmpty(t, claims.TokenID)
			assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
		})
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	service := createTestTokenService(t)
	other, err := NewTokenService(time.Minute, time.Hour, "test-issuer", "test-audience", false, "", "", "another-secret-key-for-jwt-signing-32", nil)
	require.NoError(t, err)
	foreign, _, err := other.GenerateTokens(1, "admin")
	require.NoError(t, err)

	wrongAudience, err := NewTokenService(time.Minute, time.Hour, "test-issuer", "elsewhere", false, "", "", testSecret, nil)
	require.NoError(t, err)
	misdirected, _, err := wrongAudience.GenerateTokens(1, "admin")
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": "access",
		"jti":        "x",
		"iat":        time.Now().Unix(),
		"exp":        time.Now().Add(time.Minute).Unix(),
		"iss":        "test-issuer",
		"aud":        "test-audience",
	})
	noUserToken, err := noUser.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "invalid token format", token: "invalid.token.format"},
		{name: "signed with another key", token: foreign},
		{name: "wrong audience", token: misdirected},
		{name: "missing user id", token: noUserToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    1,
		"role":       "admin",
		"token_type": "access",
		"jti":        "expired",
		"iat":        time.Now().Add(-2 * time.Hour).Unix(),
		"exp":        time.Now().Add(-time.Hour).Unix(),
		"iss":        "test-issuer",
		"aud":        "test-audience",
	})
	token, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = createTestTokenService(t).ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRevokeToken(t *testing.T) {
	service := createTestTokenService(t)
	ctx := context.Background()

	accessToken, refreshToken, err := service.GenerateTokens(7, "client")
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(ctx, accessToken))

	_, err = service.ValidateToken(ctx, accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// the pair is revoked independently
	_, err = service.ValidateToken(ctx, refreshToken)
	assert.NoError(t, err)

	assert.Error(t, service.RevokeToken(ctx, "invalid.token"))
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore().(*memoryRevocationStore)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "a", time.Minute))

	revoked, err := store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, store.entries)
}
