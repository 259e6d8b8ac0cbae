package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mkurosawa/todoapp-backend/internal/auth"
	"github.com/mkurosawa/todoapp-backend/internal/domain"
	"github.com/mkurosawa/todoapp-backend/internal/mailer"
	"github.com/mkurosawa/todoapp-backend/internal/repository"
)

// DeleteConfirmationPhrase must be typed verbatim before an account is
// removed. Friction, not a security boundary.
const DeleteConfirmationPhrase = "delete my account"

const emailChangeTokenTTL = 24 * time.Hour

// UpdateNameRequest holds the data for a profile name change.
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// EmailChangeRequest holds the data to start an email change. The
// current password re-proves the caller's identity.
type EmailChangeRequest struct {
	Password string `json:"password"`
	NewEmail string `json:"newEmail"`
}

// DeleteAccountRequest holds the data for account deletion.
type DeleteAccountRequest struct {
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

// EmailChangeResult reports the outcome of a verified email change.
type EmailChangeResult struct {
	NewEmail string `json:"newEmail"`
	Message  string `json:"message"`
}

// ProfileService handles account-lifecycle workflows: name change,
// email change with confirmation token, and cascading deletion.
type ProfileService interface {
	UpdateName(ctx context.Context, identity *auth.Identity, req UpdateNameRequest) (*domain.User, error)
	InitiateEmailChange(ctx context.Context, identity *auth.Identity, req EmailChangeRequest) (string, error)
	VerifyEmailChange(ctx context.Context, rawToken string) (*EmailChangeResult, error)
	DeleteAccount(ctx context.Context, identity *auth.Identity, req DeleteAccountRequest) error
}

type profileService struct {
	users      repository.UserRepository
	tokens     repository.EmailChangeTokenRepository
	sessions   *auth.SessionManager
	hasher     auth.PasswordHasher
	mail       mailer.Mailer
	appBaseURL string
	log        zerolog.Logger
}

// NewProfileService creates the account-lifecycle service.
func NewProfileService(
	users repository.UserRepository,
	tokens repository.EmailChangeTokenRepository,
	sessions *auth.SessionManager,
	hasher auth.PasswordHasher,
	mail mailer.Mailer,
	appBaseURL string,
	log zerolog.Logger,
) ProfileService {
	return &profileService{
		users:      users,
		tokens:     tokens,
		sessions:   sessions,
		hasher:     hasher,
		mail:       mail,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		log:        log,
	}
}

func (s *profileService) requireUser(ctx context.Context, identity *auth.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// verifyPassword checks the caller's current password, distinguishing
// federated-only accounts (no local credential) from a plain mismatch.
func (s *profileService) verifyPassword(user *domain.User, password string) error {
	if password == "" {
		return domain.NewValidationError("password", "password is required")
	}
	if !user.HasPassword() {
		return domain.ErrNoPasswordSet
	}
	ok, err := s.hasher.Verify(password, *user.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return domain.ErrInvalidCredential
	}
	return nil
}

func (s *profileService) UpdateName(ctx context.Context, identity *auth.Identity, req UpdateNameRequest) (*domain.User, error) {
	user, err := s.requireUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return nil, domain.NewValidationError("name", "name must be between 2 and 50 characters")
	}
	if name == user.Name {
		return nil, domain.ErrNoOpChange
	}

	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update name: %w", err)
	}
	return user, nil
}

func (s *profileService) InitiateEmailChange(ctx context.Context, identity *auth.Identity, req EmailChangeRequest) (string, error) {
	user, err := s.requireUser(ctx, identity)
	if err != nil {
		return "", err
	}

	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))
	if !validEmail(newEmail) {
		return "", domain.NewValidationError("newEmail", "a valid email address is required")
	}
	if newEmail == user.Email {
		return "", domain.ErrNoOpChange
	}

	if existing, err := s.users.FindByEmail(ctx, newEmail); err == nil && existing.ID != user.ID {
		return "", domain.ErrEmailTaken
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("failed to check email availability: %w", err)
	}

	if err := s.verifyPassword(user, req.Password); err != nil {
		return "", err
	}

	raw, err := auth.GenerateToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate email-change token: %w", err)
	}

	token := &domain.EmailChangeToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		OldEmail:  user.Email,
		NewEmail:  newEmail,
		Token:     raw,
		ExpiresAt: time.Now().Add(emailChangeTokenTTL),
	}

	// Replace deletes any earlier pending token for this user, so at
	// most one row exists per user at any time.
	if err := s.tokens.Replace(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store email-change token: %w", err)
	}

	verifyURL := fmt.Sprintf("%s/api/verify-email?token=%s", s.appBaseURL, raw)
	if err := s.mail.SendEmailChangeConfirmation(ctx, user.Email, newEmail, verifyURL); err != nil {
		// A pending token whose link never reached the user is
		// unreachable state; remove it before reporting failure.
		if delErr := s.tokens.DeleteByID(ctx, token.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("token_id", token.ID.String()).
				Msg("failed to clean up token after mail failure")
		}
		s.log.Error().Err(err).Str("user_id", user.ID.String()).Msg("email dispatch failed")
		return "", domain.ErrNotificationFailure
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("email change initiated")
	return "A confirmation email has been sent to the new address. Follow the link inside to complete the change.", nil
}

func (s *profileService) VerifyEmailChange(ctx context.Context, rawToken string) (*EmailChangeResult, error) {
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}

	token, err := s.tokens.FindByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if token.Expired(time.Now()) {
		// Expired tokens are consumed on discovery; a retry with the
		// same string reports InvalidToken.
		if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
			return nil, fmt.Errorf("failed to remove expired token: %w", err)
		}
		return nil, domain.ErrTokenExpired
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}

	now := time.Now()
	user.Email = token.NewEmail
	user.EmailVerified = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to apply email change: %w", err)
	}

	if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("failed to consume token: %w", err)
	}

	// The new address is a new identity; force re-authentication.
	if err := s.sessions.DestroyAllForUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("email change verified")
	return &EmailChangeResult{
		NewEmail: user.Email,
		Message:  "Your email address has been updated. Please log in again with the new address.",
	}, nil
}

func (s *profileService) DeleteAccount(ctx context.Context, identity *auth.Identity, req DeleteAccountRequest) error {
	user, err := s.requireUser(ctx, identity)
	if err != nil {
		return err
	}

	if req.Confirmation != DeleteConfirmationPhrase {
		return domain.NewValidationError("confirmation",
			fmt.Sprintf("type %q exactly to confirm", DeleteConfirmationPhrase))
	}

	if err := s.verifyPassword(user, req.Password); err != nil {
		return err
	}

	if err := s.users.DeleteCascade(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	// Rows are gone; drop any cached sessions as well.
	if err := s.sessions.DestroyAllForUser(ctx, user.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID.String()).
			Msg("session sweep after account deletion failed")
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("account deleted")
	return nil
}
