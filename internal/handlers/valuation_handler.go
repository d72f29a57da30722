package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/dates"
	apierrors "github.com/stwalsh4118/landledger/internal/errors"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/valuation"
)

// ValuationHandler values posted records without storing them.
type ValuationHandler struct {
	defaults config.ValuationConfig
	rules    portfolio.AssessmentRules
	now      func() time.Time
}

// NewValuationHandler creates a new ValuationHandler instance.
func NewValuationHandler(defaults config.ValuationConfig, rules portfolio.AssessmentRules) *ValuationHandler {
	return &ValuationHandler{
		defaults: defaults,
		rules:    rules,
		now:      time.Now,
	}
}

// ActiveValuationRequest is the body of the active valuation endpoint.
type ActiveValuationRequest struct {
	Parcel       models.Record `json:"parcel" binding:"required"`
	GrowthPct    *float64      `json:"growth_pct" binding:"omitempty,gte=0,lte=100"`
	HorizonYears *int          `json:"horizon_years" binding:"omitempty,gte=1,lte=50"`
	FXRate       float64       `json:"fx_rate" binding:"gte=0"`
	AsOf         string        `json:"as_of"`
}

// SoldValuationRequest is the body of the sold valuation endpoint.
type SoldValuationRequest struct {
	Parcel models.Record `json:"parcel" binding:"required"`
	FXRate float64       `json:"fx_rate" binding:"gte=0"`
}

// AllocationRequest is the body of the allocation endpoint.
type AllocationRequest struct {
	Investors     []models.Record `json:"investors" binding:"required"`
	SaleValue     float64         `json:"sale_value"`
	PurchasePrice float64         `json:"purchase_price"`
}

// AssessmentRequest is the body of the assessment endpoint.
type AssessmentRequest struct {
	Parcel models.Record `json:"parcel" binding:"required"`
}

// AssessmentResponse represents the response for the assessment endpoint.
type AssessmentResponse struct {
	Assessment portfolio.Assessment `json:"assessment"`
}

// ValuationResponse carries a valuation. Result is null when the parcel lacks
// the data needed to value it.
type ValuationResponse struct {
	Computable bool                    `json:"computable"`
	Result     *models.ValuationResult `json:"result"`
}

// AllocationShare is one investor's part of the appreciation.
type AllocationShare struct {
	Name        string  `json:"name"`
	ProfitShare float64 `json:"profit_share"`
	Amount      float64 `json:"amount"`
}

// AllocationResponse represents the response for the allocation endpoint.
type AllocationResponse struct {
	Appreciation float64           `json:"appreciation"`
	Shares       []AllocationShare `json:"shares"`
}

// Active handles POST /api/v1/valuations/active.
func (h *ValuationHandler) Active(c *gin.Context) {
	var req ActiveValuationRequest
	if !bindJSON(c, &req) {
		return
	}

	asOf := h.now()
	if req.AsOf != "" {
		parsed, ok := dates.Parse(req.AsOf)
		if !ok {
			apierrors.BadRequest(c, "as_of is not a valid date", map[string]interface{}{"as_of": req.AsOf})
			return
		}
		asOf = parsed
	}

	growth := h.defaults.GrowthPct
	if req.GrowthPct != nil {
		growth = *req.GrowthPct
	}
	horizon := h.defaults.HorizonYears
	if req.HorizonYears != nil {
		horizon = *req.HorizonYears
	}

	res := valuation.ValueActiveParcel(models.NormalizeParcel(req.Parcel), growth, horizon, req.FXRate, asOf)
	c.JSON(http.StatusOK, ValuationResponse{Computable: res != nil, Result: res})
}

// Sold handles POST /api/v1/valuations/sold.
func (h *ValuationHandler) Sold(c *gin.Context) {
	var req SoldValuationRequest
	if !bindJSON(c, &req) {
		return
	}

	res := valuation.ValueSoldParcel(models.NormalizeParcel(req.Parcel), req.FXRate)
	c.JSON(http.StatusOK, ValuationResponse{Computable: true, Result: &res})
}

// Allocation handles POST /api/v1/valuations/allocation.
func (h *ValuationHandler) Allocation(c *gin.Context) {
	var req AllocationRequest
	if !bindJSON(c, &req) {
		return
	}

	investors := make([]models.Investor, 0, len(req.Investors))
	for _, r := range req.Investors {
		investors = append(investors, models.NormalizeInvestor(r))
	}

	amounts := valuation.AllocateProfit(investors, req.SaleValue, req.PurchasePrice)
	shares := make([]AllocationShare, 0, len(investors))
	for i, inv := range investors {
		shares = append(shares, AllocationShare{
			Name:        inv.Name,
			ProfitShare: inv.ProfitShare,
			Amount:      money.Round2(amounts[i]),
		})
	}

	c.JSON(http.StatusOK, AllocationResponse{
		Appreciation: money.Round2(valuation.Appreciation(req.SaleValue, req.PurchasePrice)),
		Shares:       shares,
	})
}

// Assessment handles POST /api/v1/valuations/assessment.
func (h *ValuationHandler) Assessment(c *gin.Context) {
	var req AssessmentRequest
	if !bindJSON(c, &req) {
		return
	}

	p := models.NormalizeParcel(req.Parcel)
	c.JSON(http.StatusOK, AssessmentResponse{Assessment: portfolio.Assess(p, h.rules)})
}
