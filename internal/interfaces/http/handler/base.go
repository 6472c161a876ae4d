package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/domain/shared"
	"github.com/minicrm/backend/internal/infrastructure/logger"
	"github.com/minicrm/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Message sends a response with only a message
func (h *BaseHandler) Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// HandleError converts errors to HTTP responses.
// Store failures answer 500 with the raw cause, auth failures 401 with the message only.
// A body cut off by the size limit answers 413 whatever wraps it.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if bodyTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.MessageResponse{Message: dto.MsgBodyTooLarge})
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case shared.CodeAuthFailed:
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: domainErr.Message})
			return
		case shared.CodeStoreError:
			resp := dto.ErrorResponse{Message: domainErr.Message}
			if domainErr.Cause != nil {
				resp.Error = domainErr.Cause.Error()
			}
			c.JSON(http.StatusInternalServerError, resp)
			return
		}
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Message: "Internal server error",
		Error:   err.Error(),
	})
}

// bodyTooLarge reports whether reading the body hit http.MaxBytesReader's limit
func bodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
