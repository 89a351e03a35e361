package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habittracker/internal/service"
)

type Authenticator interface {
	Login(password string) (string, error)
}

type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type tokenRequest struct {
	Password string `json:"password" binding:"required"`
}

// IssueToken POST /auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "password required")
		return
	}

	token, err := h.auth.Login(req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidPassword):
		h.logger.Warn("IssueToken: invalid password", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	case errors.Is(err, service.ErrAuthDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		respondError(c, h.logger, "IssueToken", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
