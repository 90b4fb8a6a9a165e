package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	domainaudit "stayadmin/internal/domain/audit"
)

// The audit trail names users and carries row snapshots, so every route
// here is super-admin only.
type AuditHTTP interface {
	List(c *gin.Context)
	Recent(c *gin.Context)
	Summary(c *gin.Context)
	Statistics(c *gin.Context)
}

type AuditHandler struct {
	Audit  domainaudit.Repository
	Logger *slog.Logger
}

func (h AuditHandler) List(c *gin.Context) {
	if _, ok := requireSuperAdmin(c); !ok {
		return
	}
	f := domainaudit.Filter{
		Entity:   c.Query("entity"),
		EntityID: queryUint(c, "entity_id"),
		Action:   c.Query("action"),
		UserID:   queryUint(c, "user_id"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		f.To = &to
	}
	entries, total, err := h.Audit.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Items: entries, Total: total, Page: f.Page, Limit: f.Limit})
}

func (h AuditHandler) Recent(c *gin.Context) {
	if _, ok := requireSuperAdmin(c); !ok {
		return
	}
	entries, err := h.Audit.Recent(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Summary aggregates one entity's trail by action.
func (h AuditHandler) Summary(c *gin.Context) {
	if _, ok := requireSuperAdmin(c); !ok {
		return
	}
	entity := c.Param("entity")
	entityID, ok := pathID(c)
	if !ok {
		return
	}
	summary, err := h.Audit.Summarize(c.Request.Context(), entity, entityID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": summary})
}

func (h AuditHandler) Statistics(c *gin.Context) {
	if _, ok := requireSuperAdmin(c); !ok {
		return
	}
	var from, to *time.Time
	if parsed, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		from = &parsed
	}
	if parsed, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	stats, err := h.Audit.Statistics(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

var _ AuditHTTP = AuditHandler{}
