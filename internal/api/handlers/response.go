package handlers

import (
	stderrors "errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// respond writes the success envelope the storefront client expects
func respond(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondPage(c *gin.Context, data interface{}, p domain.Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

// respondError maps domain errors to HTTP statuses
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		notFound   *errors.ErrNotFound
		validation *errors.ErrValidation
		conflict   *errors.ErrConflict
		unauth     *errors.ErrUnauthorized
		transition *errors.ErrInvalidStateTransition
	)
	switch {
	case stderrors.As(err, &notFound):
		fail(c, http.StatusNotFound, notFound.Resource+" not found")
	case stderrors.As(err, &validation):
		body := gin.H{"success": false, "message": validation.Error()}
		if len(validation.Fields) > 0 {
			body["errors"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case stderrors.As(err, &conflict):
		fail(c, http.StatusConflict, conflict.Error())
	case stderrors.As(err, &unauth):
		fail(c, http.StatusUnauthorized, unauth.Error())
	case stderrors.As(err, &transition):
		fail(c, http.StatusBadRequest, "Order cannot be moved from "+string(transition.From)+" to "+string(transition.To))
	default:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal error")
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "validation failed",
		"details": err.Error(),
	})
}

// pageParams reads page and limit, falling back to defaults on bad input
func pageParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func pagination(page, limit, total int) domain.Pagination {
	return domain.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}
