package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/tabkeeper/internal/api"
	"github.com/mmynk/tabkeeper/internal/auth"
	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/storage"
)

// AccountBackend is the part of the backend client used for accounts.
// *api.Client implements it.
type AccountBackend interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
	Register(ctx context.Context, reg models.Registration) (string, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, req models.PasswordReset) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAdmin(ctx context.Context, username string) (bool, error)
	GrantAdmin(ctx context.Context, username string) error
}

// RejectedError is a refusal the backend reported inside a 2xx reply.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// AuthService signs staff in and out and manages accounts.
type AuthService struct {
	backend AccountBackend
	session *auth.Session
	tokens  storage.TokenStore
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(backend AccountBackend, session *auth.Session, tokens storage.TokenStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		backend: backend,
		session: session,
		tokens:  tokens,
		logger:  logger,
	}
}

// Restore loads the token saved by a previous run. An expired token is
// deleted. It reports whether a usable session was restored.
func (s *AuthService) Restore(ctx context.Context) (bool, error) {
	token, err := s.tokens.GetToken(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to restore session: %w", err)
	}

	if err := s.session.Set(token); err != nil {
		return false, fmt.Errorf("failed to restore session: %w", err)
	}
	if s.session.Expired() {
		s.logger.Info("Saved session expired")
		s.session.Clear()
		if err := s.tokens.DeleteToken(ctx); err != nil {
			s.logger.Warn("Failed to delete expired token", "error", err)
		}
		return false, nil
	}

	s.logger.Debug("Session restored", "user_id", s.session.UserID())
	return true, nil
}

// Login authenticates a user and keeps the returned token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	creds := models.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := validateInput(creds); err != nil {
		return nil, err
	}
	s.logger.Info("Login request", "username", creds.Username)

	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("Login failed", "username", creds.Username, "status", api.StatusCode(err), "error", err)
		switch api.StatusCode(err) {
		case http.StatusUnauthorized:
			return nil, ErrIncorrectPassword
		case http.StatusNotFound:
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if result.Error != "" {
		return nil, &RejectedError{Message: result.Error}
	}

	if err := s.session.Set(result.Token); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	if err := s.tokens.SaveToken(ctx, result.Token); err != nil {
		// The session still works for this run.
		s.logger.Warn("Failed to persist session token", "error", err)
	}

	user := result.User
	if user == nil {
		user = &models.User{Username: creds.Username}
		if claims := s.session.Claims(); claims != nil {
			user.ID = claims.UserID
			user.IsAdmin = claims.IsAdmin
		}
	}
	s.logger.Info("Login successful", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Register creates a staff account and returns the backend's message.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (string, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validateInput(reg); err != nil {
		return "", err
	}
	if err := auth.ValidateNewPassword(reg.Password); err != nil {
		return "", err
	}

	msg, err := s.backend.Register(ctx, reg)
	if err != nil {
		s.logger.Error("Registration failed", "username", reg.Username, "error", err)
		return "", fmt.Errorf("failed to register: %w", err)
	}
	s.logger.Info("User registered successfully", "username", reg.Username)
	return msg, nil
}

// Logout ends the session. The local token is cleared even if the backend
// call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	err := s.backend.Logout(ctx)

	s.session.Clear()
	if derr := s.tokens.DeleteToken(ctx); derr != nil {
		s.logger.Warn("Failed to delete session token", "error", derr)
	}

	if err != nil {
		s.logger.Warn("Logout request failed", "error", err)
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the account with the given email.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, confirm string) error {
	if err := auth.ValidateReset(newPassword, confirm); err != nil {
		return err
	}
	req := models.PasswordReset{Email: strings.TrimSpace(email), NewPassword: newPassword, ConfirmPassword: confirm}
	if err := validateInput(req); err != nil {
		return err
	}
	if err := s.backend.ResetPassword(ctx, req); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	s.logger.Info("Password reset", "email", req.Email)
	return nil
}

// Profile returns the profile of userID, or of the signed-in user when
// userID is empty.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		userID = s.session.UserID()
	}
	if userID == "" {
		return nil, auth.ErrMissingToken
	}
	user, err := s.backend.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile of %s: %w", userID, err)
	}
	return user, nil
}

// CurrentUser asks the backend who the session token belongs to.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	if !s.session.Active() {
		return nil, auth.ErrMissingToken
	}
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// GrantAdmin gives username admin access. It fails with ErrAlreadyAdmin if
// the user already has it.
func (s *AuthService) GrantAdmin(ctx context.Context, username string) error {
	req := models.AdminAccess{Username: strings.TrimSpace(username)}
	if err := validateInput(req); err != nil {
		return err
	}

	isAdmin, err := s.backend.IsAdmin(ctx, req.Username)
	if err != nil {
		return fmt.Errorf("failed to check admin access of %s: %w", req.Username, err)
	}
	if isAdmin {
		return ErrAlreadyAdmin
	}
	if err := s.backend.GrantAdmin(ctx, req.Username); err != nil {
		return fmt.Errorf("failed to grant admin access to %s: %w", req.Username, err)
	}
	s.logger.Info("Admin access granted", "username", req.Username)
	return nil
}
