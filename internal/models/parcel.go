package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/money"
)

const (
	DefaultInvestorName = "Investor"
	DefaultLocation     = "Unknown"
)

// CurrencyPair holds an amount in the home currency (Primary, GMD) next to its
// foreign-currency peer (Secondary, EUR). Either side may be zero when unknown.
type CurrencyPair struct {
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// Investor is an external capital contributor to a parcel.
type Investor struct {
	Name         string       `json:"name"`
	Principal    CurrencyPair `json:"principal"`
	InterestRate float64      `json:"interest_rate"`
	RateBasis    RateBasis    `json:"rate_basis"`
	ProfitShare  float64      `json:"profit_share"`
}

// Subdivision is the plan for selling a parcel as separate plots.
type Subdivision struct {
	PlotCount         int          `json:"plot_count"`
	PricePerPlot      CurrencyPair `json:"price_per_plot"`
	SalesPeriodMonths int          `json:"sales_period_months"`
}

// TotalRevenue is the plot count times the price per plot, in both currencies.
func (s Subdivision) TotalRevenue() CurrencyPair {
	n := float64(s.PlotCount)
	return CurrencyPair{
		Primary:   money.Round2(n * s.PricePerPlot.Primary),
		Secondary: money.Round2(n * s.PricePerPlot.Secondary),
	}
}

// MonthlyRevenue spreads TotalRevenue over the sales period. It is zero when no
// period is set.
func (s Subdivision) MonthlyRevenue() CurrencyPair {
	if s.SalesPeriodMonths <= 0 {
		return CurrencyPair{}
	}
	total := s.TotalRevenue()
	m := float64(s.SalesPeriodMonths)
	return CurrencyPair{
		Primary:   money.Round2(total.Primary / m),
		Secondary: money.Round2(total.Secondary / m),
	}
}

// Parcel is a tracked land unit. Location is its identity.
//
// Dates are nil when missing or unparseable; callers pick their own fallback.
// ExpectedRevenue and the expected costs are in the secondary currency.
type Parcel struct {
	Location             string
	DealStage            DealStage
	Strategy             Strategy
	PurchaseDate         *time.Time
	PurchasePrice        CurrencyPair
	SaleDate             *time.Time
	SalePrice            CurrencyPair
	ExpectedRevenue      float64
	ExpectedCost         float64
	ExpectedCostInternal float64
	ExpectedCostExternal float64
	PlannedEndDate       *time.Time
	SalesStartDate       *time.Time
	Subdivision          *Subdivision
	LengthM              float64
	WidthM               float64
	Boundary             Boundary
	StatusNote           string
	Investors            []Investor
}

// TotalExpectedCost is the recorded expected cost, or the sum of its internal
// and external parts when no total was recorded.
func (p Parcel) TotalExpectedCost() float64 {
	if p.ExpectedCost != 0 {
		return p.ExpectedCost
	}
	return money.Sum(p.ExpectedCostInternal, p.ExpectedCostExternal)
}

// Area is length times width in square metres.
func (p Parcel) Area() float64 {
	return p.LengthM * p.WidthM
}

// ExternalPrincipal sums the primary-currency principal of all investors.
func (p Parcel) ExternalPrincipal() float64 {
	total := 0.0
	for _, inv := range p.Investors {
		total += inv.Principal.Primary
	}
	return total
}

// NormalizeInvestor builds an Investor from a record, applying defaults.
func NormalizeInvestor(r Record) Investor {
	name := r.String("name")
	if name == "" {
		name = DefaultInvestorName
	}
	return Investor{
		Name: name,
		Principal: CurrencyPair{
			Primary:   r.Number("principal"),
			Secondary: r.Number("principal_secondary"),
		},
		InterestRate: r.Number("interest_rate"),
		RateBasis:    ParseRateBasis(r.String("rate_basis")),
		ProfitShare:  r.Number("profit_share"),
	}
}

// NormalizeParcel is the single place where a raw record becomes a Parcel.
// It never fails: malformed numbers become 0 and malformed dates become nil.
func NormalizeParcel(r Record) Parcel {
	p := Parcel{
		Location:      r.String("location"),
		DealStage:     ParseDealStage(r.String("deal_stage")),
		Strategy:      ParseStrategy(r.String("strategy")),
		PurchaseDate:  r.Date("purchase_date"),
		PurchasePrice: CurrencyPair{Primary: r.Number("purchase_price"), Secondary: r.Number("purchase_price_secondary")},
		SaleDate:      r.Date("sale_date"),
		SalePrice:     CurrencyPair{Primary: r.Number("sale_price"), Secondary: r.Number("sale_price_secondary")},

		ExpectedRevenue:      r.Number("expected_revenue"),
		ExpectedCost:         r.Number("expected_cost"),
		ExpectedCostInternal: r.Number("expected_cost_internal"),
		ExpectedCostExternal: r.Number("expected_cost_external"),
		PlannedEndDate:       r.Date("planned_end_date"),
		SalesStartDate:       r.Date("sales_start_date"),

		LengthM:    r.Number("length_m"),
		WidthM:     r.Number("width_m"),
		StatusNote: r.String("status_note"),
	}
	if p.Location == "" {
		p.Location = DefaultLocation
	}

	if plots := int(r.Number("plot_count")); plots > 0 {
		p.Subdivision = &Subdivision{
			PlotCount: plots,
			PricePerPlot: CurrencyPair{
				Primary:   r.Number("price_per_plot"),
				Secondary: r.Number("price_per_plot_secondary"),
			},
			SalesPeriodMonths: int(r.Number("sales_period_months")),
		}
	}

	if raw, ok := r.Get("boundary"); ok {
		if b, err := ParseBoundary(raw); err == nil {
			p.Boundary = b
		}
	}

	if raw, ok := r.Get("investors"); ok {
		p.Investors = normalizeInvestors(raw)
	}
	return p
}

func normalizeInvestors(raw interface{}) []Investor {
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []Record:
		for _, rec := range v {
			items = append(items, rec)
		}
	case []map[string]interface{}:
		for _, rec := range v {
			items = append(items, rec)
		}
	default:
		return nil
	}

	investors := make([]Investor, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case Record:
			investors = append(investors, NormalizeInvestor(v))
		case map[string]interface{}:
			investors = append(investors, NormalizeInvestor(Record(v)))
		default:
			// A bare value is kept as a name with nothing invested.
			investors = append(investors, Investor{Name: fmt.Sprint(v), RateBasis: BasisUnknown})
		}
	}
	return investors
}

// Record renders the investor in its canonical record form.
func (inv Investor) Record() Record {
	return Record{
		"name":                inv.Name,
		"principal":           inv.Principal.Primary,
		"principal_secondary": inv.Principal.Secondary,
		"interest_rate":       inv.InterestRate,
		"rate_basis":          string(inv.RateBasis),
		"profit_share":        inv.ProfitShare,
	}
}

// Record renders the parcel in its canonical record form, with dates as
// YYYY-MM-DD and empty optional dates omitted.
func (p Parcel) Record() Record {
	r := Record{
		"location":                 p.Location,
		"deal_stage":               string(p.DealStage),
		"strategy":                 string(p.Strategy),
		"purchase_price":           p.PurchasePrice.Primary,
		"purchase_price_secondary": p.PurchasePrice.Secondary,
		"sale_price":               p.SalePrice.Primary,
		"sale_price_secondary":     p.SalePrice.Secondary,
		"expected_revenue":         p.ExpectedRevenue,
		"expected_cost":            p.ExpectedCost,
		"expected_cost_internal":   p.ExpectedCostInternal,
		"expected_cost_external":   p.ExpectedCostExternal,
		"length_m":                 p.LengthM,
		"width_m":                  p.WidthM,
		"status_note":              p.StatusNote,
	}
	setDate(r, "purchase_date", p.PurchaseDate)
	setDate(r, "sale_date", p.SaleDate)
	setDate(r, "planned_end_date", p.PlannedEndDate)
	setDate(r, "sales_start_date", p.SalesStartDate)

	if p.Subdivision != nil {
		r["plot_count"] = p.Subdivision.PlotCount
		r["price_per_plot"] = p.Subdivision.PricePerPlot.Primary
		r["price_per_plot_secondary"] = p.Subdivision.PricePerPlot.Secondary
		r["sales_period_months"] = p.Subdivision.SalesPeriodMonths
	}
	if len(p.Boundary.Points) > 0 {
		r["boundary"] = p.Boundary.Points
	}

	investors := make([]interface{}, 0, len(p.Investors))
	for _, inv := range p.Investors {
		investors = append(investors, map[string]interface{}(inv.Record()))
	}
	r["investors"] = investors
	return r
}

func setDate(r Record, key string, t *time.Time) {
	if t != nil {
		r[key] = dates.Format(*t)
	}
}

// MarshalJSON encodes the parcel as its canonical record.
func (p Parcel) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Record())
}

// UnmarshalJSON decodes any record shape, legacy keys included, through NormalizeParcel.
func (p *Parcel) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("failed to unmarshal parcel: %w", err)
	}
	*p = NormalizeParcel(r)
	return nil
}
