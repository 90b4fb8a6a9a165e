package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayadmin/internal/infra/config"
	"stayadmin/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Booking        BookingHTTP
	Guest          GuestHTTP
	Apartment      ApartmentHTTP
	Pricing        PricingHTTP
	User           UserHTTP
	Dashboard      DashboardHTTP
	Report         ReportHTTP
	Audit          AuditHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.POST("/auth/change-password", h.Auth.ChangePassword)
	}
	if h.Booking != nil {
		api.GET("/bookings", h.Booking.List)
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.DELETE("/bookings/:id", h.Booking.Delete)
		api.POST("/bookings/:id/send-email", h.Booking.SendEmail)
	}
	if h.Guest != nil {
		api.GET("/guests", h.Guest.List)
		api.POST("/guests", h.Guest.Create)
		api.GET("/guests/:id", h.Guest.Get)
		api.PUT("/guests/:id", h.Guest.Update)
		api.DELETE("/guests/:id", h.Guest.Delete)
	}
	if h.Apartment != nil {
		api.GET("/apartments", h.Apartment.List)
		api.POST("/apartments", h.Apartment.Create)
		api.GET("/apartments/:id", h.Apartment.Get)
		api.PUT("/apartments/:id", h.Apartment.Update)
		api.DELETE("/apartments/:id", h.Apartment.Delete)
		api.GET("/apartments/:id/availability", h.Apartment.Availability)
		api.GET("/apartments/:id/bookings", h.Apartment.Bookings)
	}
	if h.Pricing != nil {
		pricingGroup := api.Group("/pricing")
		pricingGroup.GET("", h.Pricing.List)
		pricingGroup.GET("/history", h.Pricing.History)
		pricingGroup.GET("/current", h.Pricing.Current)
		pricingGroup.POST("/calculate", h.Pricing.Calculate)
		pricingGroup.GET("/:id", h.Pricing.Get)
		pricingGroup.POST("", h.Pricing.Create)
		pricingGroup.PUT("/:id", h.Pricing.Update)
		pricingGroup.DELETE("/:id", h.Pricing.Delete)
	}
	if h.User != nil {
		api.GET("/users", h.User.List)
		api.POST("/users", h.User.Create)
		api.GET("/users/:id", h.User.Get)
		api.PUT("/users/:id", h.User.Update)
		api.DELETE("/users/:id", h.User.Delete)
	}
	if h.Dashboard != nil {
		dashGroup := api.Group("/dashboard")
		dashGroup.GET("/stats", h.Dashboard.Stats)
		dashGroup.GET("/recent-activity", h.Dashboard.RecentActivity)
		dashGroup.GET("/monthly-revenue", h.Dashboard.MonthlyRevenue)
		dashGroup.GET("/status-distribution", h.Dashboard.StatusDistribution)
		dashGroup.GET("/guest-type-distribution", h.Dashboard.GuestTypeDistribution)
		dashGroup.GET("/upcoming-schedule", h.Dashboard.UpcomingSchedule)
	}
	if h.Report != nil {
		reportGroup := api.Group("/reports")
		reportGroup.GET("/revenue", h.Report.Revenue)
		reportGroup.GET("/occupancy", h.Report.Occupancy)
		reportGroup.GET("/arrivals-departures", h.Report.ArrivalsDepartures)
		reportGroup.GET("/outstanding-balances", h.Report.OutstandingBalances)
		reportGroup.GET("/guest-statistics", h.Report.GuestStatistics)
		reportGroup.GET("/apartment-performance", h.Report.ApartmentPerformance)
		reportGroup.GET("/payment-analytics", h.Report.PaymentAnalytics)
	}
	if h.Audit != nil {
		api.GET("/audit-logs", h.Audit.List)
		api.GET("/audit-logs/recent", h.Audit.Recent)
		api.GET("/audit-logs/statistics", h.Audit.Statistics)
		api.GET("/audit-logs/:entity/:id/summary", h.Audit.Summary)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
