package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	apartmentsvc "stayadmin/internal/app/services/apartment"
	bookingsvc "stayadmin/internal/app/services/booking"
	domainbooking "stayadmin/internal/domain/booking"
)

type ApartmentHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Availability(c *gin.Context)
	Bookings(c *gin.Context)
}

type ApartmentHandler struct {
	Service        *apartmentsvc.Service
	BookingService *bookingsvc.Service
	Logger         *slog.Logger
}

func (h ApartmentHandler) List(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	items, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h ApartmentHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	a, err := h.Service.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type apartmentWriteRequest struct {
	Name  string `json:"name" binding:"required"`
	Floor string `json:"floor"`
	Unit  string `json:"unit"`
}

func (h ApartmentHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req apartmentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	a, err := h.Service.Create(c.Request.Context(), apartmentsvc.WriteParams{
		Name: req.Name, Floor: req.Floor, Unit: req.Unit,
	}, p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h ApartmentHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req apartmentWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	a, err := h.Service.Update(c.Request.Context(), id, apartmentsvc.WriteParams{
		Name: req.Name, Floor: req.Floor, Unit: req.Unit,
	}, p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h ApartmentHandler) Delete(c *gin.Context) {
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

// Availability probes a date range. from/to are RFC3339 instants; an
// exclude_booking_id keeps a booking's own dates out of its edit check.
func (h ApartmentHandler) Availability(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	from, errFrom := time.Parse(time.RFC3339, c.Query("from"))
	to, errTo := time.Parse(time.RFC3339, c.Query("to"))
	if errFrom != nil || errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339 datetimes"})
		return
	}
	available, conflicts, err := h.BookingService.CheckAvailability(c.Request.Context(), domainbooking.ConflictQuery{
		ApartmentID: id,
		From:        from,
		To:          to,
		ExcludeID:   queryUint(c, "exclude_booking_id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": available, "conflicts": conflicts})
}

func (h ApartmentHandler) Bookings(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	items, err := h.Service.BookingsFor(c.Request.Context(), id, c.Query("status"), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

var _ ApartmentHTTP = ApartmentHandler{}
