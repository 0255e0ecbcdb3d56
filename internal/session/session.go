// Package session reads and writes the signed-in user's bearer token and profile.
package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// Session is a view over the token and user keys.
// It holds no state of its own; every read goes to the store.
type Session struct {
	store  storage.Store
	logger *zap.Logger
}

// New creates a session over store
func New(store storage.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, logger: logger}
}

// Token returns the stored bearer token, or "" when signed out
func (s *Session) Token(ctx context.Context) string {
	var token string
	if err := storage.GetJSON(ctx, s.store, storage.KeyToken, &token); err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Warn("Failed to read session token", zap.Error(err))
		}
		return ""
	}
	return token
}

// User returns the stored profile
func (s *Session) User(ctx context.Context) (domain.User, bool) {
	var user domain.User
	if err := storage.GetJSON(ctx, s.store, storage.KeyUser, &user); err != nil {
		if !errors.IsNotFound(err) {
			s.logger.Warn("Failed to read session user", zap.Error(err))
		}
		return domain.User{}, false
	}
	return user, true
}

// IsAuthenticated reports whether a token is present
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// IsAdmin reports whether the signed-in user has the admin role
func (s *Session) IsAdmin(ctx context.Context) bool {
	if !s.IsAuthenticated(ctx) {
		return false
	}
	user, ok := s.User(ctx)
	return ok && user.IsAdmin()
}

// Save stores the result of a successful sign-in
func (s *Session) Save(ctx context.Context, auth domain.AuthResult) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyUser, auth.User); err != nil {
		return err
	}
	return storage.SetJSON(ctx, s.store, storage.KeyToken, auth.Token)
}

// Clear signs the user out locally
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, storage.KeyUser)
}
