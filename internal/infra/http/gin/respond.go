package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	bookingsvc "stayadmin/internal/app/services/booking"
	usersvc "stayadmin/internal/app/services/user"
	domainapartment "stayadmin/internal/domain/apartment"
	domainbooking "stayadmin/internal/domain/booking"
	domainguest "stayadmin/internal/domain/guest"
	domainpricing "stayadmin/internal/domain/pricing"
	storageerr "stayadmin/internal/domain/shared/storage"
	domainuser "stayadmin/internal/domain/user"
)

// respondError maps domain errors onto HTTP statuses in one place so every
// handler fails the same way.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var conflict *domainbooking.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "apartment already booked for this period",
			"conflicts": conflict.Conflicts,
		})
	case errors.Is(err, domainbooking.ErrInvalidStay),
		errors.Is(err, domainbooking.ErrBadStatus),
		errors.Is(err, domainguest.ErrBadType),
		errors.Is(err, domainpricing.ErrInvalidSeason),
		errors.Is(err, domainpricing.ErrInvalidDays),
		errors.Is(err, domainpricing.ErrNegativeDiscount),
		errors.Is(err, domainpricing.ErrEffectiveInPast),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, usersvc.ErrPasswordTooShort),
		errors.Is(err, usersvc.ErrBadRole),
		errors.Is(err, bookingsvc.ErrGuestRequired),
		errors.Is(err, bookingsvc.ErrNotConfirmed),
		errors.Is(err, bookingsvc.ErrNoGuestEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainguest.ErrNotFound),
		errors.Is(err, domainapartment.ErrNotFound),
		errors.Is(err, domainpricing.ErrRuleNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainapartment.ErrNameTaken),
		errors.Is(err, domainapartment.ErrHasBookings),
		errors.Is(err, domainuser.ErrEmailAlreadyUsed),
		errors.Is(err, domainpricing.ErrRuleIsActive),
		errors.Is(err, domainbooking.ErrTransitionNotAllowed),
		errors.Is(err, bookingsvc.ErrEmailSent):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainpricing.ErrNoRule):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.Is(err, storageerr.ErrUnavailable):
		if logger != nil {
			logger.Error("storage unavailable", "error", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func queryUint(c *gin.Context, key string) uint {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

// listResponse is the common shape of paged collections.
type listResponse struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
