package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/api/middleware"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// SendMessageRequest represents a direct message from the shop
type SendMessageRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}

// BroadcastRequest represents a message sent to every shopper
type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}

// HandleListUsers handles GET /api/users (admin)
func HandleListUsers(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := repos.User.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if users == nil {
			users = []*domain.User{}
		}
		respond(c, http.StatusOK, users, "")
	}
}

// HandleSendMessage handles POST /api/messages (admin)
func HandleSendMessage(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		typ, err := messageType(req.Type, req.Message)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		ctx := c.Request.Context()
		if _, err := repos.User.GetByID(ctx, req.UserID); err != nil {
			respondError(c, logger, err)
			return
		}

		msg := &domain.Message{
			UserID:  req.UserID,
			Message: strings.TrimSpace(req.Message),
			Type:    typ,
		}
		if err := repos.Message.Create(ctx, msg); err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusCreated, msg, "Message sent")
	}
}

// HandleBroadcast handles POST /api/messages/broadcast (admin).
// Every non-admin account receives its own copy.
func HandleBroadcast(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BroadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		typ, err := messageType(req.Type, req.Message)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		ctx := c.Request.Context()
		users, err := repos.User.List(ctx)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		text := strings.TrimSpace(req.Message)
		msgs := make([]*domain.Message, 0, len(users))
		for _, u := range users {
			if u.IsAdmin() {
				continue
			}
			msgs = append(msgs, &domain.Message{
				UserID:    u.ID,
				Message:   text,
				Type:      typ,
				Broadcast: true,
			})
		}
		if len(msgs) > 0 {
			if err := repos.Message.CreateBatch(ctx, msgs); err != nil {
				respondError(c, logger, err)
				return
			}
		}

		logger.Info("Broadcast sent", zap.Int("recipients", len(msgs)), zap.String("type", string(typ)))
		respond(c, http.StatusCreated, gin.H{"sent": len(msgs)}, "Broadcast sent")
	}
}

// HandleListMessages handles GET /api/messages (admin)
func HandleListMessages(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := repos.Message.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if msgs == nil {
			msgs = []*domain.Message{}
		}
		respond(c, http.StatusOK, msgs, "")
	}
}

// HandleMyMessages handles GET /api/messages/my-messages
func HandleMyMessages(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		msgs, err := repos.Message.ListByUserID(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if msgs == nil {
			msgs = []*domain.Message{}
		}
		respond(c, http.StatusOK, msgs, "")
	}
}

// HandleMarkMessageRead handles PATCH /api/messages/:id/read
func HandleMarkMessageRead(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := repos.Message.MarkRead(c.Request.Context(), c.Param("id"), user.ID); err != nil {
			respondError(c, logger, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"id": c.Param("id"), "read": true}, "")
	}
}

// messageType defaults an empty type to info
func messageType(raw, message string) (domain.MessageType, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(message) == "" {
		fields["message"] = "required"
	}
	typ := domain.MessageType(strings.ToLower(strings.TrimSpace(raw)))
	if typ == "" {
		typ = domain.MessageTypeInfo
	}
	if !typ.IsValid() {
		fields["type"] = "must be one of info, promotion, order, alert"
	}
	if len(fields) > 0 {
		return "", &errors.ErrValidation{Message: "Please fix the errors in the form", Fields: fields}
	}
	return typ, nil
}
