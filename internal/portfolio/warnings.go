package portfolio

import (
	"fmt"

	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
)

// Warning codes.
const (
	WarnProfitShareOverAllocated = "profit_share_over_allocated"
	WarnPrincipalExceedsPurchase = "principal_exceeds_purchase"
	WarnInvalidBoundary          = "invalid_boundary"
)

// Warning flags data that is accepted as entered but is probably a mistake.
type Warning struct {
	Location string `json:"location"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Warnings checks one parcel for suspicious data. Nothing is corrected:
// valuations always use the figures as entered.
func Warnings(p models.Parcel) []Warning {
	var out []Warning

	shares := 0.0
	for _, inv := range p.Investors {
		shares += inv.ProfitShare
	}
	if money.Round2(shares) > 1 {
		out = append(out, Warning{
			Location: p.Location,
			Code:     WarnProfitShareOverAllocated,
			Message:  fmt.Sprintf("investor profit shares add up to %.0f%%", shares*100),
		})
	}

	if external := p.ExternalPrincipal(); p.PurchasePrice.Primary > 0 && external > p.PurchasePrice.Primary {
		out = append(out, Warning{
			Location: p.Location,
			Code:     WarnPrincipalExceedsPurchase,
			Message:  fmt.Sprintf("investor principal %.2f exceeds purchase price %.2f", external, p.PurchasePrice.Primary),
		})
	}

	if len(p.Boundary.Points) > 0 && !p.Boundary.Valid() {
		out = append(out, Warning{
			Location: p.Location,
			Code:     WarnInvalidBoundary,
			Message:  "boundary needs at least 3 valid points",
		})
	}
	return out
}

// PortfolioWarnings collects the warnings of every parcel in order.
func PortfolioWarnings(parcels []models.Parcel) []Warning {
	out := []Warning{}
	for _, p := range parcels {
		out = append(out, Warnings(p)...)
	}
	return out
}
