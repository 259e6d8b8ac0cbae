package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/domain"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
)

// RegisterRequest holds the data needed to create a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds the credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult contains the authenticated user, the session row and the
// raw signed token for the cookie.
type LoginResult struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
	Token   string          `json:"-"`
}

// AuthService handles registration and credential login.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest, ipAddress, userAgent string) (*LoginResult, error)
	Logout(ctx context.Context, identity *auth.Identity) error
}

type authService struct {
	users    repository.UserRepository
	sessions *auth.SessionManager
	hasher   auth.PasswordHasher
	log      zerolog.Logger
}

// NewAuthService creates the credential auth service.
func NewAuthService(users repository.UserRepository, sessions *auth.SessionManager, hasher auth.PasswordHasher, log zerolog.Logger) AuthService {
	return &authService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		log:      log,
	}
}

func validateRegistration(req RegisterRequest) *domain.ValidationError {
	fields := make(map[string]string)

	nameLen := utf8.RuneCountInString(strings.TrimSpace(req.Name))
	if nameLen < 2 || nameLen > 50 {
		fields["name"] = "name must be between 2 and 50 characters"
	}
	if !validEmail(req.Email) {
		fields["email"] = "a valid email address is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if verr := validateRegistration(req); verr != nil {
		return nil, verr
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: &hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest, ipAddress, userAgent string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredential
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same error as a bad password so callers cannot
			// enumerate registered addresses.
			return nil, domain.ErrInvalidCredential
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.HasPassword() {
		return nil, domain.ErrInvalidCredential
	}

	ok, err := s.hasher.Verify(req.Password, *user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredential
	}

	session, token, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

func (s *authService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if err := s.sessions.Destroy(ctx, identity.SessionID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
