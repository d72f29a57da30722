package models

// ValuationPath tells which valuation rules produced a result.
type ValuationPath string

const (
	PathActive ValuationPath = "active"
	PathSold   ValuationPath = "sold"
)

// OwnerEquityName is the name of the synthetic investor that represents the
// owner's own capital on active parcels.
const OwnerEquityName = "Owner equity"

// InvestorResult is one investor's share of a parcel valuation.
// Money fields are in the primary currency and rounded to 2 decimals; the
// *Secondary fields are nil when no exchange rate was available.
type InvestorResult struct {
	Name                 string    `json:"name"`
	RateBasis            RateBasis `json:"rate_basis"`
	InterestRate         float64   `json:"interest_rate"`
	Principal            float64   `json:"principal"`
	AccruedInterest      float64   `json:"accrued_interest"`
	CapitalCost          float64   `json:"capital_cost"`
	CapitalCostSecondary *float64  `json:"capital_cost_secondary"`
	ProfitSharePct       float64   `json:"profit_share_pct"`
	ProfitShareAmount    float64   `json:"profit_share_amount"`
	ProfitShareSecondary *float64  `json:"profit_share_secondary"`
	TotalPayout          float64   `json:"total_payout"`
}

// ValuationResult is the derived financial outcome of one parcel.
type ValuationResult struct {
	Location           string           `json:"location"`
	DealStage          DealStage        `json:"deal_stage"`
	Strategy           Strategy         `json:"strategy,omitempty"`
	Path               ValuationPath    `json:"path"`
	PurchasePrice      float64          `json:"purchase_price"`
	SalePrice          float64          `json:"sale_price"`
	SalePriceSecondary *float64         `json:"sale_price_secondary"`
	SaleValue          float64          `json:"sale_value"`
	SaleValueSecondary *float64         `json:"sale_value_secondary"`
	Projected          bool             `json:"projected"`
	MonthsElapsed      int              `json:"months_elapsed"`
	TotalPrincipal     float64          `json:"total_principal"`
	TotalInterest      float64          `json:"total_interest"`
	Appreciation       float64          `json:"appreciation"`
	NetProfit          float64          `json:"net_profit"`
	NetProfitSecondary *float64         `json:"net_profit_secondary"`
	Investors          []InvestorResult `json:"investors"`
}
