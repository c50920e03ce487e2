package firebaseauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elmolle/eggtrack/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.AuthConfig{APIKey: "test-key", BaseURL: server.URL})
}

func TestSignInSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@elmolle.cl", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "uid-1",
			"email":        "ana@elmolle.cl",
			"idToken":      "id-token",
			"refreshToken": "refresh-token",
			"expiresIn":    "3600",
		})
	})

	info, err := client.SignIn(context.Background(), "ana@elmolle.cl", "secret")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", info.UID)
	assert.Equal(t, "id-token", info.IDToken)
	assert.Equal(t, "3600", info.ExpiresIn)
}

func TestSignInProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "INVALID_LOGIN_CREDENTIALS", "status": "INVALID_ARGUMENT"},
		})
	})

	_, err := client.SignIn(context.Background(), "ana@elmolle.cl", "wrong")
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", provErr.Code)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
}

func TestProviderErrorTrimsDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled.",
			},
		})
	})

	_, err := client.SignIn(context.Background(), "ana@elmolle.cl", "secret")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "TOO_MANY_ATTEMPTS_TRY_LATER", provErr.Code)
}

func TestLookupUID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		assert.Equal(t, "/accounts:lookup", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{{"localId": "uid-9"}},
		})
	})

	uid, err := client.LookupUID(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-9", uid)
}

func TestLookupUIDNoUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{}})
	})

	_, err := client.LookupUID(context.Background(), "stale-token")
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "USER_NOT_FOUND", provErr.Code)
}

func TestSendPasswordReset(t *testing.T) {
	var gotType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotType, _ = body["requestType"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "ana@elmolle.cl"})
	})

	err := client.SendPasswordReset(context.Background(), "ana@elmolle.cl")
	require.NoError(t, err)
	assert.Equal(t, "PASSWORD_RESET", gotType)
}
