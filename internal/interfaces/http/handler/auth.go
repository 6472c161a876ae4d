package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/application/identity"
	"github.com/minicrm/backend/internal/domain/shared"
	"github.com/minicrm/backend/internal/interfaces/http/dto"
)

// AuthHandler handles the admin login
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
// @ID           login
// @Summary      Admin login
// @Description  Checks the admin username and password. A body that cannot be decoded counts as wrong credentials.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Admin credentials"
// @Success      200 {object} dto.LoginResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      413 {object} dto.MessageResponse
// @Failure      429 {object} dto.MessageResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		if bodyTooLarge(err) {
			h.HandleError(c, err)
			return
		}
		h.HandleError(c, shared.ErrInvalidCredentials)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Message:   dto.MsgLoginSuccess,
		LoggedIn:  true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}
