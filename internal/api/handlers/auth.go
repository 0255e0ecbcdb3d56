package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/api/middleware"
	"github.com/jerseyshop/storefront/internal/checkout"
	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/internal/service"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// SignUpRequest represents the sign-up payload
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignInRequest represents the sign-in payload
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandleSignUp handles POST /api/auth/signup
func HandleSignUp(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		fields := make(map[string]string)
		if !checkout.ValidName(req.Name) {
			fields["name"] = "Name must be 3-50 letters"
		}
		if !checkout.ValidEmail(req.Email) {
			fields["email"] = "Please enter a valid email address"
		}
		if len(req.Password) < service.MinPasswordLength {
			fields["password"] = "Password must be at least 6 characters"
		}
		if len(fields) > 0 {
			respondError(c, logger, &errors.ErrValidation{Message: "Please fix the errors in the form", Fields: fields})
			return
		}

		hash, err := middleware.HashPassword(req.Password)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		user := &domain.User{
			Name:         req.Name,
			Email:        req.Email,
			Role:         domain.RoleUser,
			PasswordHash: hash,
		}
		if err := repos.User.Create(c.Request.Context(), user); err != nil {
			respondError(c, logger, err)
			return
		}

		token, err := middleware.IssueToken(cfg.MockBackend.JWTSecret, user, 0)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("User signed up", zap.String("user_id", user.ID))
		respond(c, http.StatusCreated, domain.AuthResult{Token: token, User: *user}, "Account created")
	}
}

// HandleSignIn handles POST /api/auth/signin
func HandleSignIn(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		user, err := repos.User.GetByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
		if err != nil {
			if errors.IsNotFound(err) {
				fail(c, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			respondError(c, logger, err)
			return
		}
		if !middleware.VerifyPassword(req.Password, user.PasswordHash) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := middleware.IssueToken(cfg.MockBackend.JWTSecret, user, 0)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, domain.AuthResult{Token: token, User: *user}, "")
	}
}
