package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	domainaudit "stayadmin/internal/domain/audit"
	"stayadmin/internal/infra/db/postgres"
)

type DashboardHTTP interface {
	Stats(c *gin.Context)
	RecentActivity(c *gin.Context)
	MonthlyRevenue(c *gin.Context)
	StatusDistribution(c *gin.Context)
	GuestTypeDistribution(c *gin.Context)
	UpcomingSchedule(c *gin.Context)
}

type DashboardHandler struct {
	Queries *postgres.DashboardQueries
	Audit   domainaudit.Repository
	Logger  *slog.Logger
}

func (h DashboardHandler) Stats(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	stats, err := h.Queries.Stats(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h DashboardHandler) RecentActivity(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	entries, _, err := h.Audit.List(c.Request.Context(), domainaudit.Filter{
		Page:  1,
		Limit: queryInt(c, "limit", 10),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h DashboardHandler) MonthlyRevenue(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	months, err := h.Queries.MonthlyRevenue(c.Request.Context(), time.Now(), queryInt(c, "months", 12))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": months})
}

func (h DashboardHandler) StatusDistribution(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	dist, err := h.Queries.StatusDistribution(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dist})
}

func (h DashboardHandler) GuestTypeDistribution(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	dist, err := h.Queries.GuestTypeDistribution(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dist})
}

func (h DashboardHandler) UpcomingSchedule(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	sched, err := h.Queries.UpcomingSchedule(c.Request.Context(), time.Now(), queryInt(c, "days", 7))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

var _ DashboardHTTP = DashboardHandler{}
