package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/server/handlers"
	"github.com/elmolle/eggtrack/internal/service/auth"
	"github.com/elmolle/eggtrack/pkg/clients/firebaseauth"
)

type staticProvider struct {
	uid string
}

func (p *staticProvider) SignIn(context.Context, string, string) (*firebaseauth.SessionInfo, error) {
	return &firebaseauth.SessionInfo{UID: p.uid, IDToken: "token"}, nil
}

func (p *staticProvider) SignUp(context.Context, string, string) (*firebaseauth.SessionInfo, error) {
	return &firebaseauth.SessionInfo{UID: p.uid}, nil
}

func (p *staticProvider) LookupUID(_ context.Context, idToken string) (string, error) {
	if idToken != "good-token" {
		return "", &firebaseauth.ProviderError{Code: "INVALID_ID_TOKEN", StatusCode: 400}
	}
	return p.uid, nil
}

func (p *staticProvider) SendPasswordReset(context.Context, string) error {
	return nil
}

type singleUserRepo struct {
	user models.User
}

func (r *singleUserRepo) GetUser(_ context.Context, uid string) (*models.User, error) {
	if uid != r.user.UID {
		return nil, nil
	}
	user := r.user
	return &user, nil
}

func (r *singleUserRepo) SaveUser(context.Context, models.User) error { return nil }

func (r *singleUserRepo) ListUsers(context.Context) ([]models.User, error) {
	return []models.User{r.user}, nil
}

func (r *singleUserRepo) UpdateUserRole(context.Context, string, models.Role, string) error {
	return nil
}

func (r *singleUserRepo) DeleteUser(context.Context, string) error { return nil }

func newTestRouter(user models.User) http.Handler {
	authSvc := auth.NewService(&staticProvider{uid: user.UID}, &singleUserRepo{user: user}, nil, nil)

	return New(Handlers{
		Auth:    handlers.NewAuthHandler(authSvc, nil),
		Users:   handlers.NewUsersHandler(authSvc, nil),
		Records: handlers.NewRecordsHandler(nil, nil),
		Reports: handlers.NewReportsHandler(nil, nil),
	}, authSvc, 7, nil)
}

func TestHealthzIsPublic(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Role: models.RoleSupervisor})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Role: models.RoleSupervisor})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sheds", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sheds", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIAcceptsResolvedToken(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Role: models.RolePollero, AssignedShed: "S1A"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/sheds", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "S7B")
}

func TestAdminRoutesRejectPollero(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Role: models.RolePollero, AssignedShed: "S1A"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportRoutesRejectPollero(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Role: models.RolePollero, AssignedShed: "S1A"})

	for _, path := range []string{
		"/api/reports/ELMOLLE/S2A/summary",
		"/api/reports/ELMOLLE/S2A/export",
		"/api/reports/ELMOLLE/S1A/summary",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer good-token")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
}

func TestAdminRoutesAllowSupervisor(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Name: "Ana", Role: models.RoleSupervisor})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	r := newTestRouter(models.User{UID: "u1", Role: models.RoleSupervisor})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}
