package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL, AnonKey: "anon-key"})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("requires URL and key", func(t *testing.T) {
		_, err := NewClient(Config{URL: "", AnonKey: "key"})
		assert.ErrorIs(t, err, ErrNotConfigured)

		_, err = NewClient(Config{URL: "https://example.supabase.co", AnonKey: "  "})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("trims a trailing slash from the URL", func(t *testing.T) {
		client, err := NewClient(Config{URL: "https://example.supabase.co/", AnonKey: "key"})
		require.NoError(t, err)
		assert.Equal(t, "https://example.supabase.co", client.baseURL)
	})
}

func TestClientGetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the auth user with identities", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/auth/v1/user", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))

			_ = json.NewEncoder(w).Encode(AuthUser{
				ID:         "user-1",
				Email:      "alice@example.com",
				Identities: []Identity{{Provider: "email"}, {Provider: "google"}},
			})
		})

		authUser, err := client.GetUser(ctx, "token-123")

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", authUser.Email)
		assert.True(t, authUser.HasEmailIdentity())
	})

	t.Run("non-2xx maps to lookup failed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.GetUser(ctx, "bad-token")

		assert.ErrorIs(t, err, ErrLookupFailed)
	})
}

func TestClientVerifyPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("2xx means valid", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alice@example.com", body["email"])

			w.WriteHeader(http.StatusOK)
		})

		valid, err := client.VerifyPassword(ctx, "alice@example.com", "secret")

		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("400 means wrong password, not an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		valid, err := client.VerifyPassword(ctx, "alice@example.com", "wrong")

		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("401 means wrong password, not an error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		valid, err := client.VerifyPassword(ctx, "alice@example.com", "wrong")

		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("5xx is an unexpected provider error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.VerifyPassword(ctx, "alice@example.com", "secret")

		assert.ErrorIs(t, err, ErrUnexpected)
	})
}

func TestClientUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("sends password only when no email is given", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/auth/v1/user", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "NewPass$1", body["password"])
			_, hasEmail := body["email"]
			assert.False(t, hasEmail)

			w.WriteHeader(http.StatusOK)
		})

		err := client.UpdateUser(ctx, "token-123", UpdateUserInput{Password: "NewPass$1"})

		assert.NoError(t, err)
	})

	t.Run("sends the email alongside the password when set", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alice@example.com", body["email"])
			w.WriteHeader(http.StatusOK)
		})

		err := client.UpdateUser(ctx, "token-123", UpdateUserInput{
			Password: "NewPass$1",
			Email:    "alice@example.com",
		})

		assert.NoError(t, err)
	})

	t.Run("4xx maps to update failed", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		})

		err := client.UpdateUser(ctx, "token-123", UpdateUserInput{Password: "NewPass$1"})

		assert.ErrorIs(t, err, ErrUpdateFailed)
	})

	t.Run("5xx maps to unexpected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := client.UpdateUser(ctx, "token-123", UpdateUserInput{Password: "NewPass$1"})

		assert.ErrorIs(t, err, ErrUnexpected)
	})
}

func TestAuthUserHasEmailIdentity(t *testing.T) {
	t.Run("from the identities array", func(t *testing.T) {
		u := &AuthUser{Identities: []Identity{{Provider: "Email"}}}
		assert.True(t, u.HasEmailIdentity())
	})

	t.Run("from legacy app_metadata providers", func(t *testing.T) {
		u := &AuthUser{AppMetadata: AppMetadata{Providers: []string{"google", "email"}}}
		assert.True(t, u.HasEmailIdentity())
	})

	t.Run("social-only account", func(t *testing.T) {
		u := &AuthUser{Identities: []Identity{{Provider: "google"}}}
		assert.False(t, u.HasEmailIdentity())
	})
}
