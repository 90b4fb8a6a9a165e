package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	guestsvc "stayadmin/internal/app/services/guest"
	domainguest "stayadmin/internal/domain/guest"
)

type GuestHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type GuestHandler struct {
	Service *guestsvc.Service
	Logger  *slog.Logger
}

func (h GuestHandler) List(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	f := domainguest.Filter{
		Search:    c.Query("search"),
		GuestType: c.Query("guest_type"),
		Sort:      c.Query("sort"),
		Order:     c.Query("order"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 20),
	}
	items, total, err := h.Service.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Items: items, Total: total, Page: f.Page, Limit: f.Limit})
}

func (h GuestHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	g, err := h.Service.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

type guestWriteRequest struct {
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	GuestType      string `json:"guest_type"`
	PlaceOrCountry string `json:"place_or_country"`
	Introduced     string `json:"introduced"`
	IntroducedBy   string `json:"introduced_by"`
}

func (r guestWriteRequest) params() guestsvc.WriteParams {
	return guestsvc.WriteParams{
		Name:           r.Name,
		Phone:          r.Phone,
		Email:          r.Email,
		Address:        r.Address,
		GuestType:      r.GuestType,
		PlaceOrCountry: r.PlaceOrCountry,
		Introduced:     r.Introduced,
		IntroducedBy:   r.IntroducedBy,
	}
}

func (h GuestHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req guestWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	g, err := h.Service.Create(c.Request.Context(), req.params(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h GuestHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req guestWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	g, err := h.Service.Update(c.Request.Context(), id, req.params(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h GuestHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id, p.ID); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ GuestHTTP = GuestHandler{}
