package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	authsvc "stayadmin/internal/app/services/auth"
)

type AuthHTTP interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
	ChangePassword(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": result.User})
}

// Logout is a no-op server side; HS256 tokens expire on their own and the
// client drops its copy.
func (h AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	user, err := h.Service.Me(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	err := h.Service.ChangePassword(c.Request.Context(), authsvc.ChangePasswordParams{
		UserID:          p.ID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrWrongPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, authsvc.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			respondError(c, h.Logger, err)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

var _ AuthHTTP = AuthHandler{}
