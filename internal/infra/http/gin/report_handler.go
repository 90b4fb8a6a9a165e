package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayadmin/internal/infra/db/postgres"
)

type ReportHTTP interface {
	Revenue(c *gin.Context)
	Occupancy(c *gin.Context)
	ArrivalsDepartures(c *gin.Context)
	OutstandingBalances(c *gin.Context)
	GuestStatistics(c *gin.Context)
	ApartmentPerformance(c *gin.Context)
	PaymentAnalytics(c *gin.Context)
}

type ReportHandler struct {
	Queries *postgres.ReportQueries
	Logger  *slog.Logger
}

func (h ReportHandler) Revenue(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	from, to := queryDateRange(c)
	report, err := h.Queries.Revenue(c.Request.Context(), from, to, c.DefaultQuery("group_by", "month"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h ReportHandler) Occupancy(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	from, to := queryDateRange(c)
	report, err := h.Queries.Occupancy(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h ReportHandler) ArrivalsDepartures(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	day := time.Now()
	if parsed, err := time.Parse("2006-01-02", c.Query("date")); err == nil {
		day = parsed
	}
	report, err := h.Queries.ArrivalsDepartures(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h ReportHandler) OutstandingBalances(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	report, err := h.Queries.OutstandingBalances(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h ReportHandler) GuestStatistics(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	from, to := queryDateRange(c)
	stats, err := h.Queries.GuestStatistics(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h ReportHandler) ApartmentPerformance(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	from, to := queryDateRange(c)
	items, err := h.Queries.ApartmentPerformance(c.Request.Context(), from, to, time.Now())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h ReportHandler) PaymentAnalytics(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	from, to := queryDateRange(c)
	analytics, err := h.Queries.PaymentAnalytics(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// queryDateRange reads start_date and end_date as calendar dates. The end
// bound stretches to the last instant of its day.
func queryDateRange(c *gin.Context) (time.Time, time.Time) {
	var from, to time.Time
	if parsed, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		from = parsed
	}
	if parsed, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to
}

var _ ReportHTTP = ReportHandler{}
