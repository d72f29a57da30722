// Package portfolio aggregates parcel valuations across a whole portfolio:
// valuation summaries, upcoming interest payments, profit rollups per year and
// month, and per-strategy overviews.
package portfolio

import (
	"time"

	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
	"github.com/stwalsh4118/landledger/internal/valuation"
)

// Skip reasons reported for parcels left out of a summary.
const (
	ReasonInsufficientData = "missing purchase price or purchase date"
	ReasonStageNotValued   = "deal stage is not valued"
)

// SkippedParcel is a parcel that SummarizePortfolio did not value.
type SkippedParcel struct {
	Location  string           `json:"location"`
	DealStage models.DealStage `json:"deal_stage"`
	Reason    string           `json:"reason"`
}

// Totals adds up the valued parcels. Secondary totals are nil when any
// contributing result lacked a converted value.
type Totals struct {
	SaleValue          float64  `json:"sale_value"`
	TotalPrincipal     float64  `json:"total_principal"`
	TotalInterest      float64  `json:"total_interest"`
	NetProfit          float64  `json:"net_profit"`
	NetProfitSecondary *float64 `json:"net_profit_secondary"`
}

// Summary is the valuation of every eligible parcel.
type Summary struct {
	Results []models.ValuationResult `json:"results"`
	Skipped []SkippedParcel          `json:"skipped"`
	Totals  Totals                   `json:"totals"`
}

// SummarizePortfolio values each parcel by its deal stage. Acquisition and
// conversion parcels take the active path, sold parcels the sold path, and
// parcels in any other stage are skipped. A parcel without a positive
// purchase price and a purchase date is skipped whatever its stage. An empty strategy matches all
// parcels; otherwise parcels with a different strategy are ignored entirely.
func SummarizePortfolio(parcels []models.Parcel, strategy models.Strategy, growthPct float64, horizonYears int, fx float64, asOf time.Time) Summary {
	s := Summary{
		Results: []models.ValuationResult{},
		Skipped: []SkippedParcel{},
	}

	for _, p := range parcels {
		if strategy != models.StrategyNone && p.Strategy != strategy {
			continue
		}

		switch {
		case p.DealStage.Active():
			res := valuation.ValueActiveParcel(p, growthPct, horizonYears, fx, asOf)
			if res == nil {
				s.Skipped = append(s.Skipped, SkippedParcel{Location: p.Location, DealStage: p.DealStage, Reason: ReasonInsufficientData})
				continue
			}
			s.Results = append(s.Results, *res)
		case p.DealStage == models.StageSold:
			if p.PurchasePrice.Primary <= 0 || p.PurchaseDate == nil {
				s.Skipped = append(s.Skipped, SkippedParcel{Location: p.Location, DealStage: p.DealStage, Reason: ReasonInsufficientData})
				continue
			}
			s.Results = append(s.Results, valuation.ValueSoldParcel(p, fx))
		default:
			s.Skipped = append(s.Skipped, SkippedParcel{Location: p.Location, DealStage: p.DealStage, Reason: ReasonStageNotValued})
		}
	}

	s.Totals = total(s.Results)
	return s
}

func total(results []models.ValuationResult) Totals {
	var sale, principal, interest, net, netSecondary []float64
	secondaryComplete := len(results) > 0
	for _, r := range results {
		sale = append(sale, r.SaleValue)
		principal = append(principal, r.TotalPrincipal)
		interest = append(interest, r.TotalInterest)
		net = append(net, r.NetProfit)
		if r.NetProfitSecondary == nil {
			secondaryComplete = false
		} else {
			netSecondary = append(netSecondary, *r.NetProfitSecondary)
		}
	}

	t := Totals{
		SaleValue:      money.Sum(sale...),
		TotalPrincipal: money.Sum(principal...),
		TotalInterest:  money.Sum(interest...),
		NetProfit:      money.Sum(net...),
	}
	if secondaryComplete {
		t.NetProfitSecondary = money.Ptr(money.Sum(netSecondary...))
	}
	return t
}
