package supabase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims represents the claims of a Supabase-issued access token.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	Role         string         `json:"role,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`

	jwt.RegisteredClaims
}

// UserID returns the token subject, the auth account's UUID.
func (c *Claims) UserID() string {
	return c.Subject
}

// Providers returns the auth providers linked to the account, from the
// app_metadata "providers" list plus the primary "provider" key.
func (c *Claims) Providers() []string {
	var providers []string
	seen := make(map[string]bool)

	add := func(p string) {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && !seen[p] {
			seen[p] = true
			providers = append(providers, p)
		}
	}

	if primary, ok := c.AppMetadata["provider"].(string); ok {
		add(primary)
	}
	if list, ok := c.AppMetadata["providers"].([]any); ok {
		for _, v := range list {
			if p, ok := v.(string); ok {
				add(p)
			}
		}
	}

	return providers
}

// SocialAvatarURL extracts the OAuth provider's avatar URL from the user
// metadata, when one is present.
func (c *Claims) SocialAvatarURL() string {
	for _, key := range []string{"avatar_url", "picture"} {
		if v, ok := c.UserMetadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// TokenValidator validates Supabase access tokens. Supabase signs project
// tokens with a shared HS256 secret.
type TokenValidator struct {
	secret []byte
	issuer string
}

// NewTokenValidator creates a new token validator. The issuer check is
// skipped when issuer is empty.
func NewTokenValidator(secret, issuer string) (*TokenValidator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &TokenValidator{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// Validate parses and validates a token, returning its claims.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}
