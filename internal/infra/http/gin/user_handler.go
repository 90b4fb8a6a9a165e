package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	usersvc "stayadmin/internal/app/services/user"
)

type UserHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// UserHandler manages the operator accounts. Every route is super-admin only.
type UserHandler struct {
	Service *usersvc.Service
	Logger  *slog.Logger
}

func (h UserHandler) List(c *gin.Context) {
	if _, ok := requireSuperAdmin(c); !ok {
		return
	}
	users, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": users})
}

func (h UserHandler) Get(c *gin.Context) {
	if _, ok := requireSuperAdmin(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.Service.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type userCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (h UserHandler) Create(c *gin.Context) {
	p, ok := requireSuperAdmin(c)
	if !ok {
		return
	}
	var req userCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := h.Service.Create(c.Request.Context(), usersvc.CreateParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

type userUpdateRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

func (h UserHandler) Update(c *gin.Context) {
	p, ok := requireSuperAdmin(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req userUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := h.Service.Update(c.Request.Context(), id, usersvc.UpdateParams{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}, p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h UserHandler) Delete(c *gin.Context) {
	p, ok := requireSuperAdmin(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Service.Deactivate(c.Request.Context(), id, p.ID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ UserHTTP = UserHandler{}
