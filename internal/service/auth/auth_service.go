package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/repository/mongodb"
	"github.com/elmolle/eggtrack/internal/repository/rediscache"
	"github.com/elmolle/eggtrack/pkg/clients/firebaseauth"
)

var (
	// ErrAccountRevoked means the provider account still exists but its
	// profile document was deleted: access is revoked.
	ErrAccountRevoked = errors.New("account revoked")
	// ErrInvalidRole means an unknown role value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrShedRequired means a pollero without an assigned shed.
	ErrShedRequired = errors.New("pollero requires an assigned shed")
)

// Service resolves identities against the external provider and the user
// profile collection, with a read-through Redis cache in between.
type Service struct {
	provider firebaseauth.Client
	users    mongodb.UserRepository
	cache    *rediscache.ProfileCache
	logger   *zap.Logger
}

// NewService wires a new auth service instance. cache may be nil when the
// profile cache is disabled.
func NewService(provider firebaseauth.Client, users mongodb.UserRepository, cache *rediscache.ProfileCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, users: users, cache: cache, logger: logger}
}

// Session is a signed-in user plus the provider tokens the client keeps.
type Session struct {
	User         models.User `json:"user"`
	IDToken      string      `json:"idToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    string      `json:"expiresIn"`
}

// SignIn authenticates credentials with the provider and loads the profile
// document. A missing document means the account was deleted by an admin.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	info, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("provider sign-in: %w", err)
	}

	user, err := s.users.GetUser(ctx, info.UID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("sign-in for revoked account", zap.String("uid", info.UID))
		return nil, ErrAccountRevoked
	}

	s.cache.Set(ctx, *user)
	s.logger.Info("user signed in", zap.String("uid", user.UID), zap.String("role", string(user.Role)))

	return &Session{
		User:         *user,
		IDToken:      info.IDToken,
		RefreshToken: info.RefreshToken,
		ExpiresIn:    info.ExpiresIn,
	}, nil
}

// ResolveToken maps a bearer idToken to the current user profile, cache
// first, MongoDB as the authority.
func (s *Service) ResolveToken(ctx context.Context, idToken string) (*models.User, error) {
	uid, err := s.provider.LookupUID(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("token lookup: %w", err)
	}

	if user, ok := s.cache.Get(ctx, uid); ok {
		return user, nil
	}

	user, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountRevoked
	}

	s.cache.Set(ctx, *user)
	return user, nil
}

// CreateUserInput carries the admin-users creation form.
type CreateUserInput struct {
	Name         string      `json:"name" binding:"required,min=3"`
	Email        string      `json:"email" binding:"required,email"`
	Password     string      `json:"password" binding:"required,min=6,max=20"`
	Role         models.Role `json:"role" binding:"required"`
	AssignedShed string      `json:"assignedShed"`
}

// CreateUser registers the account with the provider and writes its profile
// document. Polleros must carry an assigned shed; other roles never do.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, input.Role)
	}
	if input.Role == models.RolePollero && input.AssignedShed == "" {
		return nil, ErrShedRequired
	}
	if input.Role != models.RolePollero {
		input.AssignedShed = ""
	}

	info, err := s.provider.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("provider sign-up: %w", err)
	}

	user := models.User{
		UID:          info.UID,
		Email:        input.Email,
		Name:         input.Name,
		Role:         input.Role,
		AssignedShed: input.AssignedShed,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("uid", user.UID), zap.String("role", string(user.Role)))
	return &user, nil
}

// ListUsers returns every profile document.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateRole changes a user's role and drops their cached profile.
func (s *Service) UpdateRole(ctx context.Context, uid string, role models.Role, assignedShed string) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	if role == models.RolePollero && assignedShed == "" {
		return ErrShedRequired
	}

	if err := s.users.UpdateUserRole(ctx, uid, role, assignedShed); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, uid)
	return nil
}

// DeleteUser removes the profile document and drops the cached profile. The
// user loses access on their next token resolution.
func (s *Service) DeleteUser(ctx context.Context, uid string) error {
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, uid)
	s.logger.Info("user deleted", zap.String("uid", uid))
	return nil
}

// SendRecovery asks the provider to email a password reset link.
func (s *Service) SendRecovery(ctx context.Context, email string) error {
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("send recovery: %w", err)
	}
	return nil
}

// UserMessage maps failures to the fixed set of Spanish messages shown to
// the user as toasts.
func UserMessage(err error) string {
	if errors.Is(err, ErrAccountRevoked) {
		return "Tu cuenta fue eliminada. Contacta al administrador."
	}

	var provErr *firebaseauth.ProviderError
	if errors.As(err, &provErr) {
		switch {
		case provErr.Code == "EMAIL_NOT_FOUND",
			provErr.Code == "INVALID_PASSWORD",
			provErr.Code == "INVALID_LOGIN_CREDENTIALS":
			return "Credenciales incorrectas. Verifica tu correo y contraseña."
		case strings.HasPrefix(provErr.Code, "TOO_MANY_ATTEMPTS"):
			return "Demasiados intentos fallidos. Intenta más tarde."
		case provErr.Code == "USER_DISABLED":
			return "Esta cuenta ha sido deshabilitada."
		case provErr.Code == "EMAIL_EXISTS":
			return "Ya existe una cuenta con este correo."
		case provErr.Code == "INVALID_EMAIL":
			return "El formato del correo no es válido."
		}
	}

	return "Ocurrió un error. Intenta nuevamente."
}
