package firebaseauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/elmolle/eggtrack/internal/config"
)

// Client exposes the Identity Toolkit operations used by the application.
type Client interface {
	SignIn(ctx context.Context, email, password string) (*SessionInfo, error)
	SignUp(ctx context.Context, email, password string) (*SessionInfo, error)
	LookupUID(ctx context.Context, idToken string) (string, error)
	SendPasswordReset(ctx context.Context, email string) error
}

// APIClient is a resty-backed implementation of Client against the Firebase
// Identity Toolkit REST API.
type APIClient struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient builds an identity provider client using the provided configuration values.
func NewClient(cfg config.AuthConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		apiKey:     cfg.APIKey,
	}
}

// SessionInfo carries the provider-issued identity for a signed-in session.
type SessionInfo struct {
	UID          string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// ProviderError is a failed Identity Toolkit call. Code holds the provider's
// machine-readable reason (e.g. INVALID_LOGIN_CREDENTIALS).
type ProviderError struct {
	Code       string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error: code=%s, status=%d", e.Code, e.StatusCode)
}

// apiError mirrors the Identity Toolkit error payload.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// SignIn exchanges email/password credentials for a session.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*SessionInfo, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	return c.sessionCall(ctx, "accounts:signInWithPassword", payload)
}

// SignUp registers a new account with the provider and returns its session.
func (c *APIClient) SignUp(ctx context.Context, email, password string) (*SessionInfo, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	return c.sessionCall(ctx, "accounts:signUp", payload)
}

// LookupUID resolves an idToken to the stable account identifier.
func (c *APIClient) LookupUID(ctx context.Context, idToken string) (string, error) {
	result := new(struct {
		Users []struct {
			LocalID string `json:"localId"`
		} `json:"users"`
	})
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(map[string]any{"idToken": idToken}).
		SetResult(result).
		SetError(apiErr).
		Post("/accounts:lookup")
	if err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return "", providerError(resp.StatusCode(), apiErr)
	}

	if len(result.Users) == 0 {
		return "", &ProviderError{Code: "USER_NOT_FOUND", StatusCode: resp.StatusCode()}
	}

	return result.Users[0].LocalID, nil
}

// SendPasswordReset asks the provider to email a password recovery link.
func (c *APIClient) SendPasswordReset(ctx context.Context, email string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(map[string]any{"requestType": "PASSWORD_RESET", "email": email}).
		SetError(apiErr).
		Post("/accounts:sendOobCode")
	if err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return providerError(resp.StatusCode(), apiErr)
	}

	return nil
}

func (c *APIClient) sessionCall(ctx context.Context, endpoint string, payload map[string]any) (*SessionInfo, error) {
	result := new(SessionInfo)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/" + endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, providerError(resp.StatusCode(), apiErr)
	}

	return result, nil
}

func providerError(status int, apiErr *apiError) error {
	code := "UNKNOWN"
	if apiErr != nil && apiErr.Error.Message != "" {
		// Messages can carry a trailing detail, e.g. "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
		code = strings.TrimSpace(strings.SplitN(apiErr.Error.Message, ":", 2)[0])
	}
	return &ProviderError{Code: code, StatusCode: status}
}
