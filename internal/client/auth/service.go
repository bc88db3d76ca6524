// Package auth handles registration, login and the stored device session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/validation"
	"github.com/iudanet/medicnote/pkg/api"
)

// ErrSessionExpired is returned when the stored access token has expired
var ErrSessionExpired = errors.New("session expired, please login again")

// Service signs users in and keeps the session in local storage
type Service struct {
	api    gateway.AuthAPI
	store  storage.AuthStorage
	state  *session.State
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates an auth service
func NewService(authAPI gateway.AuthAPI, store storage.AuthStorage, state *session.State, logger *slog.Logger) *Service {
	return &Service{
		api:    authAPI,
		store:  store,
		state:  state,
		now:    time.Now,
		logger: logger,
	}
}

// Register creates an account. It does not sign in.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if err := validateCredentials(username, password); err != nil {
		return "", err
	}

	resp, err := s.api.Register(ctx, api.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("registration failed: %w", err)
	}

	s.logger.Info("User registered", "username", username, "user_id", resp.UserID)
	return resp.UserID, nil
}

// Login authenticates, stores the session on the device and activates it
func (s *Service) Login(ctx context.Context, username, password string) (*storage.AuthData, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	auth := &storage.AuthData{
		Username:    username,
		UserID:      resp.UserID,
		AccessToken: resp.AccessToken,
	}
	if resp.ExpiresIn > 0 {
		auth.ExpiresAt = s.now().Unix() + resp.ExpiresIn
	}

	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.state.SignIn(auth.UserID, auth.Username, auth.AccessToken)
	s.logger.Info("User logged in", "username", username, "user_id", auth.UserID)
	return auth, nil
}

// Restore activates the stored session. An expired session is still
// activated so local reads and writes keep working offline; the caller gets
// ErrSessionExpired to prompt a new login.
func (s *Service) Restore(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.store.GetAuth(ctx)
	if err != nil {
		return nil, err
	}

	s.state.SignIn(auth.UserID, auth.Username, auth.AccessToken)
	if auth.Expired(s.now().Unix()) {
		return auth, ErrSessionExpired
	}
	return auth, nil
}

// Logout removes the stored session. Local records and queued mutations stay.
func (s *Service) Logout(ctx context.Context) error {
	s.state.SignOut()

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// Status returns the stored session without activating it
func (s *Service) Status(ctx context.Context) (*storage.AuthData, error) {
	return s.store.GetAuth(ctx)
}

func validateCredentials(username, password string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	return nil
}
