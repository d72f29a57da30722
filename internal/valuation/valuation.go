package valuation

import (
	"math"
	"time"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
)

// ProjectValue compounds price by growthPct percent per year over horizonYears.
func ProjectValue(price, growthPct float64, horizonYears int) float64 {
	return price * math.Pow(1+growthPct/100, float64(horizonYears))
}

// ValueActiveParcel values a parcel that is still held.
//
// The sale value is the recorded sale price when there is one, otherwise the
// purchase price projected over the horizon. Interest accrues from the purchase
// date to asOf. The owner's own capital (purchase price minus external
// principal, when positive) is appended as an extra investor that earns no
// interest and takes the full profit share.
//
// It returns nil when the parcel has no positive purchase price or no
// parseable purchase date.
func ValueActiveParcel(p models.Parcel, growthPct float64, horizonYears int, fx float64, asOf time.Time) *models.ValuationResult {
	purchase := p.PurchasePrice.Primary
	if purchase <= 0 || p.PurchaseDate == nil {
		return nil
	}

	investors := make([]models.Investor, 0, len(p.Investors)+1)
	investors = append(investors, p.Investors...)
	if equity := purchase - p.ExternalPrincipal(); equity > 0 {
		owner := models.Investor{
			Name:        models.OwnerEquityName,
			Principal:   models.CurrencyPair{Primary: equity},
			RateBasis:   models.BasisAtSale,
			ProfitShare: 1.0,
		}
		if conv := money.ToSecondary(equity, fx); conv != nil {
			owner.Principal.Secondary = *conv
		}
		investors = append(investors, owner)
	}

	saleValue := p.SalePrice.Primary
	projected := saleValue <= 0
	if projected {
		saleValue = ProjectValue(purchase, growthPct, horizonYears)
	}

	salePriceSecondary := p.SalePrice.Secondary
	if salePriceSecondary <= 0 {
		if conv := money.ToSecondary(saleValue, fx); conv != nil {
			salePriceSecondary = *conv
		}
	}

	months := dates.MonthsBetween(*p.PurchaseDate, asOf)
	res := settle(investors, saleValue, purchase, 0, months, fx)

	res.Location = p.Location
	res.DealStage = p.DealStage
	res.Strategy = p.Strategy
	res.Path = models.PathActive
	res.PurchasePrice = money.Round2(purchase)
	res.SalePrice = money.Round2(saleValue)
	res.SalePriceSecondary = money.NonZero(salePriceSecondary)
	res.SaleValue = money.Round2(saleValue)
	res.SaleValueSecondary = money.ToSecondary(saleValue, fx)
	res.Projected = projected
	return &res
}

// ValueSoldParcel values a parcel that has been sold.
//
// The sale value is the recorded sale price. Interest accrues from the purchase
// date to the sale date; when either date is missing no time has elapsed and
// only at-sale interest is due. Total principal starts at the purchase price
// itself, on top of external principal, and only external investors are listed.
func ValueSoldParcel(p models.Parcel, fx float64) models.ValuationResult {
	purchase := p.PurchasePrice.Primary
	saleValue := p.SalePrice.Primary

	saleSecondary := p.SalePrice.Secondary
	if saleSecondary <= 0 {
		if conv := money.ToSecondary(saleValue, fx); conv != nil {
			saleSecondary = *conv
		}
	}

	months := 0
	if p.PurchaseDate != nil && p.SaleDate != nil {
		months = dates.MonthsBetween(*p.PurchaseDate, *p.SaleDate)
	}

	res := settle(p.Investors, saleValue, purchase, purchase, months, fx)

	res.Location = p.Location
	res.DealStage = p.DealStage
	res.Strategy = p.Strategy
	res.Path = models.PathSold
	res.PurchasePrice = money.Round2(purchase)
	res.SalePrice = money.Round2(saleValue)
	res.SalePriceSecondary = money.NonZero(saleSecondary)
	res.SaleValue = money.Round2(saleValue)
	res.SaleValueSecondary = money.NonZero(saleSecondary)
	return res
}

// settle accrues interest for every investor over months, allocates the
// appreciation and fills in the totals. seedPrincipal is added to the total
// principal before any investor.
func settle(investors []models.Investor, saleValue, purchase, seedPrincipal float64, months int, fx float64) models.ValuationResult {
	years := float64(months) / 12
	shares := AllocateProfit(investors, saleValue, purchase)

	totalPrincipal := seedPrincipal
	totalInterest := 0.0
	rows := make([]models.InvestorResult, 0, len(investors))

	for i, inv := range investors {
		principal := inv.Principal.Primary
		interest := AccrueInterest(principal, inv.InterestRate, inv.RateBasis, months, years)
		capital := principal + interest

		totalPrincipal += principal
		totalInterest += interest

		rows = append(rows, models.InvestorResult{
			Name:                 inv.Name,
			RateBasis:            inv.RateBasis,
			InterestRate:         inv.InterestRate,
			Principal:            money.Round2(principal),
			AccruedInterest:      money.Round2(interest),
			CapitalCost:          money.Round2(capital),
			CapitalCostSecondary: money.ToSecondary(capital, fx),
			ProfitSharePct:       inv.ProfitShare,
			ProfitShareAmount:    money.Round2(shares[i]),
			ProfitShareSecondary: money.ToSecondary(shares[i], fx),
			TotalPayout:          money.Round2(capital + shares[i]),
		})
	}

	net := NetProfit(saleValue, totalPrincipal, totalInterest)
	return models.ValuationResult{
		MonthsElapsed:      months,
		TotalPrincipal:     money.Round2(totalPrincipal),
		TotalInterest:      money.Round2(totalInterest),
		Appreciation:       money.Round2(Appreciation(saleValue, purchase)),
		NetProfit:          money.Round2(net),
		NetProfitSecondary: money.ToSecondary(net, fx),
		Investors:          rows,
	}
}
