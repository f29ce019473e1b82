// Package supabase provides a client for the Supabase auth (GoTrue) REST API
// and validation of the access tokens it issues.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotConfigured is returned when the client is missing its URL or key.
	ErrNotConfigured = errors.New("supabase client is not configured")
	// ErrLookupFailed is returned when the auth user cannot be fetched.
	ErrLookupFailed = errors.New("identity lookup failed")
	// ErrUpdateFailed is returned when the provider rejects a user update.
	ErrUpdateFailed = errors.New("user update failed")
	// ErrUnexpected is returned on transport failures and 5xx responses.
	ErrUnexpected = errors.New("unexpected provider error")
)

// Config holds client configuration.
type Config struct {
	URL         string
	AnonKey     string
	HTTPTimeout time.Duration
}

// Client talks to the Supabase auth REST API.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewClient creates a new Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// Identity is a linked login method on an auth account.
type Identity struct {
	Provider string `json:"provider"`
}

// AppMetadata carries provider info for accounts created before the
// identities array existed.
type AppMetadata struct {
	Providers []string `json:"providers"`
}

// AuthUser is the provider's view of an authenticated account.
type AuthUser struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Identities  []Identity  `json:"identities"`
	AppMetadata AppMetadata `json:"app_metadata"`
}

// HasEmailIdentity reports whether the account has a password-capable
// "email" provider linked, checking both the identities array and the
// legacy app_metadata.providers list.
func (u *AuthUser) HasEmailIdentity() bool {
	for _, identity := range u.Identities {
		if strings.EqualFold(identity.Provider, "email") {
			return true
		}
	}
	for _, provider := range u.AppMetadata.Providers {
		if strings.EqualFold(provider, "email") {
			return true
		}
	}
	return false
}

// GetUser fetches the account behind an access token, including its linked
// identities.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrLookupFailed, resp.StatusCode, readBodyPrefix(resp.Body))
	}

	var authUser AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&authUser); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrLookupFailed, err)
	}

	return &authUser, nil
}

// VerifyPassword checks credentials via the password grant. A 400 or 401
// response means the password is wrong (valid=false, nil error); any other
// failure is an unexpected provider error.
func (c *Client) VerifyPassword(ctx context.Context, email, currentPassword string) (bool, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": currentPassword,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	url := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return false, nil
	default:
		return false, fmt.Errorf("%w: status %d: %s", ErrUnexpected, resp.StatusCode, readBodyPrefix(resp.Body))
	}
}

// UpdateUserInput carries the fields to change on the auth account.
type UpdateUserInput struct {
	Password string
	// Email, when non-empty, is set alongside the password. Used when the
	// account previously had no email identity.
	Email string
}

// UpdateUser issues the password (and optional email) update. Provider 5xx
// responses map to ErrUnexpected, other failures to ErrUpdateFailed.
func (c *Client) UpdateUser(ctx context.Context, accessToken string, input UpdateUserInput) error {
	payload := map[string]string{"password": input.Password}
	if input.Email != "" {
		payload["email"] = input.Email
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/auth/v1/user", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpected, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrUnexpected, resp.StatusCode, readBodyPrefix(resp.Body))
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUpdateFailed, resp.StatusCode, readBodyPrefix(resp.Body))
	}
}

// readBodyPrefix reads a bounded prefix of an error response body for logs.
func readBodyPrefix(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return string(data)
}
