package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/stwalsh4118/landledger/internal/errors"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/report"
	"github.com/stwalsh4118/landledger/internal/services"
)

// PortfolioHandler serves the portfolio analytics.
type PortfolioHandler struct {
	service services.PortfolioService
	now     func() time.Time
}

// NewPortfolioHandler creates a new PortfolioHandler instance.
func NewPortfolioHandler(service services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		now:     time.Now,
	}
}

// SummaryQuery represents the query parameters of the summary and report endpoints.
type SummaryQuery struct {
	GrowthPct    *float64 `form:"growth_pct" binding:"omitempty,gte=0,lte=100"`
	HorizonYears *int     `form:"horizon_years" binding:"omitempty,gte=1,lte=50"`
	Strategy     string   `form:"strategy" binding:"omitempty,max=64"`
}

func (q SummaryQuery) params() services.SummaryParams {
	return services.SummaryParams{
		GrowthPct:    q.GrowthPct,
		HorizonYears: q.HorizonYears,
		Strategy:     q.Strategy,
	}
}

// StrategyQuery represents the optional strategy filter of the rollup endpoint.
type StrategyQuery struct {
	Strategy string `form:"strategy" binding:"omitempty,max=64"`
}

// PaymentsResponse represents the response for the payments endpoint.
type PaymentsResponse struct {
	Payments []portfolio.Payment `json:"payments"`
	Count    int                 `json:"count"`
}

// bindQuery binds and validates query parameters, writing the error response on failure.
func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return false
	}
	return true
}

// Summary handles GET /api/v1/portfolio/summary.
func (h *PortfolioHandler) Summary(c *gin.Context) {
	var q SummaryQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.service.Summary(c.Request.Context(), q.params())
	if err != nil {
		respondServiceError(c, err, "Failed to summarize portfolio")
		return
	}
	c.JSON(http.StatusOK, out)
}

// Payments handles GET /api/v1/portfolio/payments.
func (h *PortfolioHandler) Payments(c *gin.Context) {
	payments, err := h.service.Payments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to build payments")
		return
	}
	c.JSON(http.StatusOK, PaymentsResponse{Payments: payments, Count: len(payments)})
}

// Rollup handles GET /api/v1/portfolio/rollup.
func (h *PortfolioHandler) Rollup(c *gin.Context) {
	var q StrategyQuery
	if !bindQuery(c, &q) {
		return
	}

	out, err := h.service.Rollup(c.Request.Context(), q.Strategy)
	if err != nil {
		respondServiceError(c, err, "Failed to build profit rollup")
		return
	}
	c.JSON(http.StatusOK, out)
}

// Strategies handles GET /api/v1/portfolio/strategies.
func (h *PortfolioHandler) Strategies(c *gin.Context) {
	out, err := h.service.Strategies(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to build strategy overview")
		return
	}
	c.JSON(http.StatusOK, out)
}

// Report handles GET /api/v1/portfolio/report and streams an XLSX workbook.
func (h *PortfolioHandler) Report(c *gin.Context) {
	var q SummaryQuery
	if !bindQuery(c, &q) {
		return
	}

	raw, err := h.service.Report(c.Request.Context(), q.params())
	if err != nil {
		respondServiceError(c, err, "Failed to generate report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(h.now())))
	c.Data(http.StatusOK, report.ContentType, raw)
}

// ExchangeRate handles GET /api/v1/fx. Unknown values are null rather than errors.
func (h *PortfolioHandler) ExchangeRate(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ExchangeRate(c.Request.Context()))
}
