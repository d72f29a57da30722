package portfolio

import (
	"sort"

	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
)

// StrategySummary totals the expected figures of all parcels sharing a strategy.
type StrategySummary struct {
	Strategy models.Strategy `json:"strategy"`
	Count    int             `json:"count"`
	Revenue  float64         `json:"revenue"`
	Cost     float64         `json:"cost"`
	Profit   float64         `json:"profit"`
}

// StrategyOverview groups parcels by strategy. Parcels without a strategy are
// left out. Rows are ordered by strategy name.
func StrategyOverview(parcels []models.Parcel) []StrategySummary {
	byStrategy := map[models.Strategy]*StrategySummary{}
	for _, p := range parcels {
		if p.Strategy == models.StrategyNone {
			continue
		}
		s, ok := byStrategy[p.Strategy]
		if !ok {
			s = &StrategySummary{Strategy: p.Strategy}
			byStrategy[p.Strategy] = s
		}
		cost := p.TotalExpectedCost()
		s.Count++
		s.Revenue = money.Sum(s.Revenue, p.ExpectedRevenue)
		s.Cost = money.Sum(s.Cost, cost)
		s.Profit = money.Sum(s.Profit, p.ExpectedRevenue-cost)
	}

	out := make([]StrategySummary, 0, len(byStrategy))
	for _, s := range byStrategy {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out
}

// KeyFigures are headline numbers for the whole portfolio.
type KeyFigures struct {
	ParcelCount int     `json:"parcel_count"`
	TotalAreaM2 float64 `json:"total_area_m2"`
}

// ComputeKeyFigures counts parcels and sums their surface area.
func ComputeKeyFigures(parcels []models.Parcel) KeyFigures {
	areas := make([]float64, 0, len(parcels))
	for _, p := range parcels {
		areas = append(areas, p.Area())
	}
	return KeyFigures{ParcelCount: len(parcels), TotalAreaM2: money.Sum(areas...)}
}
