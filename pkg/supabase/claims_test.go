package supabase

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func baseClaims() *Claims {
	return &Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7f9c41a1-5a90-4c0a-9d5a-111111111111",
			Issuer:    "https://example.supabase.co/auth/v1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenValidator(t *testing.T) {
	validator, err := NewTokenValidator(testSecret, "")
	require.NoError(t, err)

	t.Run("accepts a valid token", func(t *testing.T) {
		claims, err := validator.Validate(signToken(t, baseClaims(), testSecret))

		require.NoError(t, err)
		assert.Equal(t, "7f9c41a1-5a90-4c0a-9d5a-111111111111", claims.UserID())
		assert.Equal(t, "alice@example.com", claims.Email)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		_, err := validator.Validate(signToken(t, baseClaims(), "other-secret"))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		claims := baseClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := validator.Validate(signToken(t, claims, testSecret))

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token without an expiry", func(t *testing.T) {
		claims := baseClaims()
		claims.ExpiresAt = nil

		_, err := validator.Validate(signToken(t, claims, testSecret))

		assert.Error(t, err)
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		claims := baseClaims()
		claims.Subject = ""

		_, err := validator.Validate(signToken(t, claims, testSecret))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("checks the issuer when configured", func(t *testing.T) {
		strict, err := NewTokenValidator(testSecret, "https://example.supabase.co/auth/v1")
		require.NoError(t, err)

		_, err = strict.Validate(signToken(t, baseClaims(), testSecret))
		assert.NoError(t, err)

		claims := baseClaims()
		claims.Issuer = "https://evil.example.com"
		_, err = strict.Validate(signToken(t, claims, testSecret))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewTokenValidator("", "")
		assert.Error(t, err)
	})
}

func TestClaimsProviders(t *testing.T) {
	t.Run("merges provider and providers without duplicates", func(t *testing.T) {
		claims := &Claims{AppMetadata: map[string]any{
			"provider":  "Google",
			"providers": []any{"google", "EMAIL", " "},
		}}

		assert.Equal(t, []string{"google", "email"}, claims.Providers())
	})

	t.Run("empty metadata yields no providers", func(t *testing.T) {
		claims := &Claims{}
		assert.Empty(t, claims.Providers())
	})
}

func TestClaimsSocialAvatarURL(t *testing.T) {
	t.Run("prefers avatar_url over picture", func(t *testing.T) {
		claims := &Claims{UserMetadata: map[string]any{
			"avatar_url": "https://a.example.com/1.png",
			"picture":    "https://b.example.com/2.png",
		}}

		assert.Equal(t, "https://a.example.com/1.png", claims.SocialAvatarURL())
	})

	t.Run("falls back to picture", func(t *testing.T) {
		claims := &Claims{UserMetadata: map[string]any{
			"picture": "https://b.example.com/2.png",
		}}

		assert.Equal(t, "https://b.example.com/2.png", claims.SocialAvatarURL())
	})

	t.Run("blank metadata yields empty", func(t *testing.T) {
		claims := &Claims{UserMetadata: map[string]any{"avatar_url": "   "}}
		assert.Equal(t, "", claims.SocialAvatarURL())
	})
}
