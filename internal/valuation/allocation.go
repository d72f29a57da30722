package valuation

import (
	"math"

	"github.com/stwalsh4118/landledger/internal/models"
)

// Appreciation is the gain over the purchase price, floored at zero.
func Appreciation(saleValue, purchasePrice float64) float64 {
	return math.Max(0, saleValue-purchasePrice)
}

// NetProfit is what remains of the sale value once every contributor has been
// repaid with interest. It may be negative.
func NetProfit(saleValue, totalPrincipal, totalInterest float64) float64 {
	return saleValue - totalPrincipal - totalInterest
}

// AllocateProfit splits the appreciation between investors by their profit
// share, returning one amount per investor in order. Shares are used as given:
// they need not sum to 1 and are never rescaled. A sale at or below the
// purchase price allocates nothing.
func AllocateProfit(investors []models.Investor, saleValue, purchasePrice float64) []float64 {
	gain := Appreciation(saleValue, purchasePrice)
	out := make([]float64, len(investors))
	for i, inv := range investors {
		out[i] = gain * inv.ProfitShare
	}
	return out
}
