package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	pricingsvc "stayadmin/internal/app/services/pricing"
)

type PricingHTTP interface {
	List(c *gin.Context)
	History(c *gin.Context)
	Current(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Calculate(c *gin.Context)
}

type PricingHandler struct {
	Service *pricingsvc.Service
	Logger  *slog.Logger
}

func (h PricingHandler) List(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	rules, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rules})
}

func (h PricingHandler) History(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	rules, err := h.Service.History(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rules})
}

func (h PricingHandler) Current(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	rule, err := h.Service.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h PricingHandler) Get(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	rule, err := h.Service.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

type ruleWriteRequest struct {
	Rate13        decimal.Decimal `json:"rate_1_3" binding:"required"`
	Rate46        decimal.Decimal `json:"rate_4_6" binding:"required"`
	Rate7Plus     decimal.Decimal `json:"rate_7_plus" binding:"required"`
	SeasonRegular decimal.Decimal `json:"season_regular" binding:"required"`
	SeasonPeak    decimal.Decimal `json:"season_peak" binding:"required"`
	SeasonOffpeak decimal.Decimal `json:"season_offpeak" binding:"required"`
	TaxPercent    decimal.Decimal `json:"tax_percent"`
	Currency      string          `json:"currency"`
	EffectiveDate time.Time       `json:"effective_date" binding:"required"`
}

func (r ruleWriteRequest) params() pricingsvc.RuleParams {
	return pricingsvc.RuleParams{
		Rate13:        r.Rate13,
		Rate46:        r.Rate46,
		Rate7Plus:     r.Rate7Plus,
		SeasonRegular: r.SeasonRegular,
		SeasonPeak:    r.SeasonPeak,
		SeasonOffpeak: r.SeasonOffpeak,
		TaxPercent:    r.TaxPercent,
		Currency:      r.Currency,
		EffectiveDate: r.EffectiveDate,
	}
}

func (h PricingHandler) Create(c *gin.Context) {
	p, ok := requireSuperAdmin(c)
	if !ok {
		return
	}
	var req ruleWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	rule, err := h.Service.Create(c.Request.Context(), req.params(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h PricingHandler) Update(c *gin.Context) {
	p, ok := requireSuperAdmin(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ruleWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	rule, err := h.Service.Update(c.Request.Context(), id, req.params(), p.ID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (h PricingHandler) Delete(c *gin.Context) {
	p, ok := requireSuperAdmin(c)
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

type calculateRequest struct {
	Days     int             `json:"days" binding:"required"`
	Season   string          `json:"season" binding:"required"`
	Discount decimal.Decimal `json:"discount"`
}

func (h PricingHandler) Calculate(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	quote, err := h.Service.Quote(c.Request.Context(), req.Days, req.Season, req.Discount)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

var _ PricingHTTP = PricingHandler{}
