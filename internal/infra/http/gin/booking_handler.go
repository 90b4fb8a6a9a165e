package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	bookingsvc "stayadmin/internal/app/services/booking"
	domainbooking "stayadmin/internal/domain/booking"
)

type BookingHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SendEmail(c *gin.Context)
}

type BookingHandler struct {
	Service  *bookingsvc.Service
	Bookings domainbooking.Repository
	Logger   *slog.Logger
}

func (h BookingHandler) List(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	f := domainbooking.Filter{
		Search:        c.Query("search"),
		ApartmentID:   queryUint(c, "apartment_id"),
		GuestType:     c.Query("guest_type"),
		PaymentStatus: c.Query("payment_status"),
		BookingStatus: c.Query("booking_status"),
		Sort:          c.Query("sort"),
		Order:         c.Query("order"),
		Page:          queryInt(c, "page", 1),
		Limit:         queryInt(c, "limit", 20),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("date_from")); err == nil {
		f.DateFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("date_to")); err == nil {
		f.DateTo = &to
	}
	items, total, err := h.Bookings.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Items: items, Total: total, Page: f.Page, Limit: f.Limit})
}

func (h BookingHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.Bookings.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type bookingGuestRequest struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	GuestType      string `json:"guest_type"`
	PlaceOrCountry string `json:"place_or_country"`
	Introduced     string `json:"introduced"`
	IntroducedBy   string `json:"introduced_by"`
}

type bookingWriteRequest struct {
	Guest         bookingGuestRequest `json:"guest"`
	ApartmentID   uint                `json:"apartment_id"`
	FromDatetime  time.Time           `json:"from_datetime"`
	ToDatetime    time.Time           `json:"to_datetime"`
	Season        string              `json:"season"`
	Discount      decimal.Decimal     `json:"discount"`
	PaymentType   string              `json:"payment_type"`
	AmountPaid    decimal.Decimal     `json:"amount_paid"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod string              `json:"payment_method"`
	BookingStatus string              `json:"booking_status"`
}

func (r bookingWriteRequest) params() bookingsvc.WriteParams {
	return bookingsvc.WriteParams{
		Guest: bookingsvc.GuestDetails{
			ID:             r.Guest.ID,
			Name:           r.Guest.Name,
			Phone:          r.Guest.Phone,
			Email:          r.Guest.Email,
			Address:        r.Guest.Address,
			GuestType:      r.Guest.GuestType,
			PlaceOrCountry: r.Guest.PlaceOrCountry,
			Introduced:     r.Guest.Introduced,
			IntroducedBy:   r.Guest.IntroducedBy,
		},
		ApartmentID:   r.ApartmentID,
		FromDatetime:  r.FromDatetime,
		ToDatetime:    r.ToDatetime,
		Season:        r.Season,
		Discount:      r.Discount,
		PaymentType:   r.PaymentType,
		AmountPaid:    r.AmountPaid,
		PaymentStatus: r.PaymentStatus,
		PaymentMethod: r.PaymentMethod,
		BookingStatus: r.BookingStatus,
	}
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req bookingWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	b, err := h.Service.Create(c.Request.Context(), req.params(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h BookingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req bookingWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	b, err := h.Service.Update(c.Request.Context(), id, req.params(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h BookingHandler) Delete(c *gin.Context) {
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

func (h BookingHandler) SendEmail(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Service.SendConfirmation(c.Request.Context(), id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "confirmation email sent"})
}

var _ BookingHTTP = BookingHandler{}
