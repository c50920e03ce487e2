package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/pkg/clients/firebaseauth"
)

type fakeProvider struct {
	signInErr error
	uid       string
}

func (f *fakeProvider) SignIn(_ context.Context, email, _ string) (*firebaseauth.SessionInfo, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &firebaseauth.SessionInfo{UID: f.uid, Email: email, IDToken: "token", RefreshToken: "refresh", ExpiresIn: "3600"}, nil
}

func (f *fakeProvider) SignUp(_ context.Context, email, _ string) (*firebaseauth.SessionInfo, error) {
	return &firebaseauth.SessionInfo{UID: f.uid, Email: email, IDToken: "token"}, nil
}

func (f *fakeProvider) LookupUID(_ context.Context, _ string) (string, error) {
	return f.uid, nil
}

func (f *fakeProvider) SendPasswordReset(_ context.Context, _ string) error {
	return nil
}

type fakeUsers struct {
	docs map[string]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{docs: make(map[string]models.User)}
}

func (f *fakeUsers) GetUser(_ context.Context, uid string) (*models.User, error) {
	user, ok := f.docs[uid]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeUsers) SaveUser(_ context.Context, user models.User) error {
	f.docs[user.UID] = user
	return nil
}

func (f *fakeUsers) ListUsers(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.docs))
	for _, user := range f.docs {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUsers) UpdateUserRole(_ context.Context, uid string, role models.Role, assignedShed string) error {
	user := f.docs[uid]
	user.Role = role
	user.AssignedShed = assignedShed
	f.docs[uid] = user
	return nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, uid string) error {
	delete(f.docs, uid)
	return nil
}

func TestSignInLoadsProfile(t *testing.T) {
	users := newFakeUsers()
	users.docs["u1"] = models.User{UID: "u1", Email: "ana@elmolle.cl", Name: "Ana", Role: models.RoleEncargado}
	svc := NewService(&fakeProvider{uid: "u1"}, users, nil, nil)

	session, err := svc.SignIn(context.Background(), "ana@elmolle.cl", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", session.User.Name)
	assert.Equal(t, models.RoleEncargado, session.User.Role)
	assert.Equal(t, "token", session.IDToken)
}

func TestSignInRevokedAccount(t *testing.T) {
	// Provider account exists but the profile document was deleted.
	svc := NewService(&fakeProvider{uid: "ghost"}, newFakeUsers(), nil, nil)

	_, err := svc.SignIn(context.Background(), "ghost@elmolle.cl", "secret")
	assert.ErrorIs(t, err, ErrAccountRevoked)
}

func TestSignInProviderFailure(t *testing.T) {
	provider := &fakeProvider{signInErr: &firebaseauth.ProviderError{Code: "INVALID_LOGIN_CREDENTIALS", StatusCode: 400}}
	svc := NewService(provider, newFakeUsers(), nil, nil)

	_, err := svc.SignIn(context.Background(), "ana@elmolle.cl", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Credenciales incorrectas. Verifica tu correo y contraseña.", UserMessage(err))
}

func TestResolveTokenRevokedAccount(t *testing.T) {
	svc := NewService(&fakeProvider{uid: "gone"}, newFakeUsers(), nil, nil)

	_, err := svc.ResolveToken(context.Background(), "token")
	assert.ErrorIs(t, err, ErrAccountRevoked)
}

func TestCreateUserPolleroRequiresShed(t *testing.T) {
	svc := NewService(&fakeProvider{uid: "u2"}, newFakeUsers(), nil, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Pedro", Email: "pedro@elmolle.cl", Password: "secret1", Role: models.RolePollero,
	})
	assert.ErrorIs(t, err, ErrShedRequired)
}

func TestCreateUserClearsShedForAdmins(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(&fakeProvider{uid: "u3"}, users, nil, nil)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "Marta", Email: "marta@elmolle.cl", Password: "secret1",
		Role: models.RoleSupervisor, AssignedShed: "S1A",
	})
	require.NoError(t, err)
	assert.Empty(t, user.AssignedShed)
	assert.Equal(t, models.RoleSupervisor, users.docs["u3"].Role)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewService(&fakeProvider{uid: "u4"}, newFakeUsers(), nil, nil)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name: "X", Email: "x@elmolle.cl", Password: "secret1", Role: models.Role("gerente"),
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateRolePolleroRequiresShed(t *testing.T) {
	users := newFakeUsers()
	users.docs["u5"] = models.User{UID: "u5", Role: models.RoleEncargado}
	svc := NewService(&fakeProvider{uid: "u5"}, users, nil, nil)

	err := svc.UpdateRole(context.Background(), "u5", models.RolePollero, "")
	assert.ErrorIs(t, err, ErrShedRequired)

	err = svc.UpdateRole(context.Background(), "u5", models.RolePollero, "S6B")
	require.NoError(t, err)
	assert.Equal(t, "S6B", users.docs["u5"].AssignedShed)
}

func TestUserMessageMapping(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"EMAIL_NOT_FOUND", "Credenciales incorrectas. Verifica tu correo y contraseña."},
		{"INVALID_PASSWORD", "Credenciales incorrectas. Verifica tu correo y contraseña."},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", "Demasiados intentos fallidos. Intenta más tarde."},
		{"USER_DISABLED", "Esta cuenta ha sido deshabilitada."},
		{"EMAIL_EXISTS", "Ya existe una cuenta con este correo."},
		{"INVALID_EMAIL", "El formato del correo no es válido."},
		{"SOMETHING_ELSE", "Ocurrió un error. Intenta nuevamente."},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &firebaseauth.ProviderError{Code: tt.code, StatusCode: 400}
			assert.Equal(t, tt.expected, UserMessage(err))
		})
	}

	assert.Equal(t, "Tu cuenta fue eliminada. Contacta al administrador.", UserMessage(ErrAccountRevoked))
}
