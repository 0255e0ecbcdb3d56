package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/checkout"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// MinPasswordLength is enforced on sign-up before calling the backend
const MinPasswordLength = 6

// AuthService signs users in and out
type AuthService struct {
	client  AuthClient
	session SessionStore
	logger  *zap.Logger
}

// NewAuthService creates an auth service
func NewAuthService(client AuthClient, session SessionStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{client: client, session: session, logger: logger}
}

// SignIn authenticates and stores the token and profile
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	fields := make(map[string]string)
	if !checkout.ValidEmail(email) {
		fields["email"] = "Enter a valid email address"
	}
	if password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return domain.User{}, &errors.ErrValidation{Message: "Please fix the errors in the form", Fields: fields}
	}

	res, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("Sign-in failed", zap.String("email", email), zap.Error(err))
		return domain.User{}, err
	}
	if err := s.session.Save(ctx, res); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("Signed in", zap.String("user_id", res.User.ID), zap.String("role", string(res.User.Role)))
	return res.User, nil
}

// SignUp creates an account and signs it in
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	fields := make(map[string]string)
	if !checkout.ValidName(name) {
		fields["name"] = "Name must be 3-50 letters and spaces"
	}
	if !checkout.ValidEmail(email) {
		fields["email"] = "Enter a valid email address"
	}
	if len(password) < MinPasswordLength {
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return domain.User{}, &errors.ErrValidation{Message: "Please fix the errors in the form", Fields: fields}
	}

	res, err := s.client.SignUp(ctx, name, email, password)
	if err != nil {
		s.logger.Warn("Sign-up failed", zap.String("email", email), zap.Error(err))
		return domain.User{}, err
	}
	if err := s.session.Save(ctx, res); err != nil {
		return domain.User{}, err
	}
	s.logger.Info("Signed up", zap.String("user_id", res.User.ID))
	return res.User, nil
}

// SignOut forgets the stored token and profile
func (s *AuthService) SignOut(ctx context.Context) error {
	return s.session.Clear(ctx)
}
