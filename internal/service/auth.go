package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/township/internal/apperror"
	"github.com/sakif/township/internal/auth"
	"github.com/sakif/township/internal/model"
)

// AuthService checks credentials against the Users collection and manages
// the single session slot of this instance.
type AuthService struct {
	store  Store
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(store Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: logger}
}

// AuthResult bundles the user record and the issued token so the handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// Login verifies credentials and opens a session.
//
// FLOW:
//  1. Reload the dataset, so a user added on another device can log in
//  2. Find the user whose username, password AND role all match exactly
//  3. Store that user as the session in the local cache
//  4. Reload again, now on behalf of the logged-in user
//  5. Issue a token bound to the session
//
// Any mismatch gives the same Unauthorized error; callers can't tell which
// of the three values was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string, role model.Role) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", "username and password are required")
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", "role must be admin or resident")
	}

	s.store.Load(ctx)

	snap := s.store.Snapshot()
	idx := snap.FindUser(username)
	if idx < 0 || snap.Users[idx].Password != password || snap.Users[idx].Role != role {
		s.logger.Info("login rejected", slog.String("username", username), slog.String("role", string(role)))
		return nil, apperror.Unauthorized("invalid credentials, check username, password and role")
	}
	user := snap.Users[idx]

	if err := s.store.SetSession(ctx, user); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	s.store.Load(ctx)

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)
	return &AuthResult{User: user, Token: token}, nil
}

// Logout clears the session slot. Every token issued for it stops working.
func (s *AuthService) Logout(ctx context.Context) error {
	current, _ := s.store.Session(ctx)
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if current != nil {
		s.logger.Info("user logged out", slog.String("username", current.Username))
	}
	return nil
}

// Current returns the logged-in user.
func (s *AuthService) Current(ctx context.Context) (model.User, error) {
	u, err := s.store.Session(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("reading session: %w", err)
	}
	if u == nil {
		return model.User{}, apperror.Unauthorized("not logged in")
	}
	return *u, nil
}
