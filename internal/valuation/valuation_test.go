package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landledger/internal/models"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestProjectValue(t *testing.T) {
	assert.InDelta(t, 127628.15625, ProjectValue(100000, 5, 5), 1e-6)
	assert.Equal(t, 100000.0, ProjectValue(100000, 0, 10))
	assert.Equal(t, 100000.0, ProjectValue(100000, 5, 0))
}

func TestValueActiveParcel_Projection(t *testing.T) {
	p := models.Parcel{
		Location:      "Kerr Serign",
		DealStage:     models.StageAcquisition,
		PurchaseDate:  day(2024, 1, 15),
		PurchasePrice: models.CurrencyPair{Primary: 100000},
	}

	res := ValueActiveParcel(p, 5, 5, 0, *day(2025, 1, 10))
	require.NotNil(t, res)

	assert.Equal(t, models.PathActive, res.Path)
	assert.True(t, res.Projected)
	assert.Equal(t, 127628.16, res.SaleValue)
	assert.Equal(t, 12, res.MonthsElapsed)
	assert.Equal(t, 100000.0, res.TotalPrincipal)
	assert.Zero(t, res.TotalInterest)
	assert.Equal(t, 27628.16, res.NetProfit)
	assert.Equal(t, 27628.16, res.Appreciation)
	assert.Nil(t, res.SaleValueSecondary)
	assert.Nil(t, res.SalePriceSecondary)
	assert.Nil(t, res.NetProfitSecondary)

	require.Len(t, res.Investors, 1)
	owner := res.Investors[0]
	assert.Equal(t, models.OwnerEquityName, owner.Name)
	assert.Equal(t, models.BasisAtSale, owner.RateBasis)
	assert.Equal(t, 100000.0, owner.Principal)
	assert.Equal(t, 1.0, owner.ProfitSharePct)
	assert.Equal(t, 27628.16, owner.ProfitShareAmount)
	assert.Nil(t, owner.CapitalCostSecondary)

	withFX := ValueActiveParcel(p, 5, 5, 50, *day(2025, 1, 10))
	require.NotNil(t, withFX)
	require.NotNil(t, withFX.SaleValueSecondary)
	assert.Equal(t, 2552.56, *withFX.SaleValueSecondary)
	require.NotNil(t, withFX.SalePriceSecondary)
	assert.Equal(t, 2552.56, *withFX.SalePriceSecondary)
}

func TestValueActiveParcel_WithInvestors(t *testing.T) {
	p := models.Parcel{
		Location:      "Gunjur",
		DealStage:     models.StageConversion,
		PurchaseDate:  day(2024, 1, 15),
		PurchasePrice: models.CurrencyPair{Primary: 100000},
		SalePrice:     models.CurrencyPair{Primary: 150000},
		Investors: []models.Investor{
			{Name: "Awa", Principal: models.CurrencyPair{Primary: 50000}, InterestRate: 0.10, RateBasis: models.BasisMonthly, ProfitShare: 0.5},
		},
	}

	res := ValueActiveParcel(p, 5, 5, 25, *day(2025, 1, 20))
	require.NotNil(t, res)

	assert.False(t, res.Projected)
	assert.Equal(t, 150000.0, res.SaleValue)
	assert.Equal(t, 100000.0, res.TotalPrincipal)
	assert.Equal(t, 5235.65, res.TotalInterest)
	assert.Equal(t, 44764.35, res.NetProfit)
	require.NotNil(t, res.NetProfitSecondary)
	assert.Equal(t, 1790.57, *res.NetProfitSecondary)
	require.NotNil(t, res.SalePriceSecondary)
	assert.Equal(t, 6000.0, *res.SalePriceSecondary)

	require.Len(t, res.Investors, 2)
	awa := res.Investors[0]
	assert.Equal(t, "Awa", awa.Name)
	assert.Equal(t, 5235.65, awa.AccruedInterest)
	assert.Equal(t, 55235.65, awa.CapitalCost)
	require.NotNil(t, awa.CapitalCostSecondary)
	assert.Equal(t, 2209.43, *awa.CapitalCostSecondary)
	assert.Equal(t, 25000.0, awa.ProfitShareAmount)
	require.NotNil(t, awa.ProfitShareSecondary)
	assert.Equal(t, 1000.0, *awa.ProfitShareSecondary)
	assert.Equal(t, 80235.65, awa.TotalPayout)

	owner := res.Investors[1]
	assert.Equal(t, models.OwnerEquityName, owner.Name)
	assert.Equal(t, 50000.0, owner.Principal)
	assert.Zero(t, owner.AccruedInterest)
	assert.Equal(t, 50000.0, owner.ProfitShareAmount)
	assert.Equal(t, 100000.0, owner.TotalPayout)

	assert.Len(t, p.Investors, 1, "input parcel must not be modified")
}

func TestValueActiveParcel_RecordedSecondarySalePrice(t *testing.T) {
	p := models.Parcel{
		PurchaseDate:  day(2024, 6, 1),
		PurchasePrice: models.CurrencyPair{Primary: 100000},
		SalePrice:     models.CurrencyPair{Primary: 140000, Secondary: 1900},
	}
	res := ValueActiveParcel(p, 5, 5, 70, *day(2024, 6, 1))
	require.NotNil(t, res)
	require.NotNil(t, res.SalePriceSecondary)
	assert.Equal(t, 1900.0, *res.SalePriceSecondary)
	require.NotNil(t, res.SaleValueSecondary)
	assert.Equal(t, 2000.0, *res.SaleValueSecondary)
	assert.Equal(t, 1, res.MonthsElapsed)
}

func TestValueActiveParcel_FullyFundedHasNoOwnerEquity(t *testing.T) {
	p := models.Parcel{
		PurchaseDate:  day(2024, 6, 1),
		PurchasePrice: models.CurrencyPair{Primary: 100000},
		Investors: []models.Investor{
			{Name: "Fund", Principal: models.CurrencyPair{Primary: 120000}, RateBasis: models.BasisAtSale},
		},
	}
	res := ValueActiveParcel(p, 0, 1, 0, *day(2025, 6, 1))
	require.NotNil(t, res)
	require.Len(t, res.Investors, 1)
	assert.Equal(t, "Fund", res.Investors[0].Name)
	assert.Equal(t, 120000.0, res.TotalPrincipal)
	assert.Equal(t, -20000.0, res.NetProfit)
}

func TestValueActiveParcel_InsufficientData(t *testing.T) {
	asOf := *day(2025, 1, 1)
	tests := []struct {
		name   string
		parcel models.Parcel
	}{
		{name: "zero purchase price", parcel: models.Parcel{PurchaseDate: day(2024, 1, 1)}},
		{name: "negative purchase price", parcel: models.Parcel{PurchaseDate: day(2024, 1, 1), PurchasePrice: models.CurrencyPair{Primary: -5}}},
		{name: "missing purchase date", parcel: models.Parcel{PurchasePrice: models.CurrencyPair{Primary: 100000}, SalePrice: models.CurrencyPair{Primary: 200000}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ValueActiveParcel(tt.parcel, 5, 5, 60, asOf))
		})
	}
}

func soldParcel() models.Parcel {
	return models.Parcel{
		Location:      "Tujereng",
		DealStage:     models.StageSold,
		PurchaseDate:  day(2022, 3, 1),
		PurchasePrice: models.CurrencyPair{Primary: 100000},
		SaleDate:      day(2024, 3, 1),
		SalePrice:     models.CurrencyPair{Primary: 180000},
		Investors: []models.Investor{
			{Name: "Jan", Principal: models.CurrencyPair{Primary: 40000}, InterestRate: 0.05, RateBasis: models.BasisAnnual, ProfitShare: 0.2},
			{Name: "Bo", Principal: models.CurrencyPair{Primary: 10000}, InterestRate: 0.2, RateBasis: models.BasisAtSale},
		},
	}
}

func TestValueSoldParcel(t *testing.T) {
	res := ValueSoldParcel(soldParcel(), 0)

	assert.Equal(t, models.PathSold, res.Path)
	assert.Equal(t, 24, res.MonthsElapsed)
	assert.Equal(t, 180000.0, res.SaleValue)
	assert.Equal(t, 150000.0, res.TotalPrincipal)
	assert.Equal(t, 6100.0, res.TotalInterest)
	assert.Equal(t, 23900.0, res.NetProfit)
	assert.Nil(t, res.NetProfitSecondary)
	assert.Nil(t, res.SaleValueSecondary)

	require.Len(t, res.Investors, 2)
	assert.Equal(t, 4100.0, res.Investors[0].AccruedInterest)
	assert.Equal(t, 16000.0, res.Investors[0].ProfitShareAmount)
	assert.Equal(t, 60100.0, res.Investors[0].TotalPayout)
	assert.Equal(t, 2000.0, res.Investors[1].AccruedInterest)
	assert.Zero(t, res.Investors[1].ProfitShareAmount)

	withFX := ValueSoldParcel(soldParcel(), 20)
	require.NotNil(t, withFX.SaleValueSecondary)
	assert.Equal(t, 9000.0, *withFX.SaleValueSecondary)
	require.NotNil(t, withFX.NetProfitSecondary)
	assert.Equal(t, 1195.0, *withFX.NetProfitSecondary)
}

func TestValueSoldParcel_MissingDates(t *testing.T) {
	p := soldParcel()
	p.SaleDate = nil

	res := ValueSoldParcel(p, 0)
	assert.Zero(t, res.MonthsElapsed)
	assert.Zero(t, res.Investors[0].AccruedInterest)
	assert.Equal(t, 2000.0, res.Investors[1].AccruedInterest)
	assert.Equal(t, 2000.0, res.TotalInterest)
}

func TestValueSoldParcel_Loss(t *testing.T) {
	p := soldParcel()
	p.SalePrice = models.CurrencyPair{Primary: 90000, Secondary: 1250}

	res := ValueSoldParcel(p, 70)
	assert.Zero(t, res.Appreciation)
	for _, inv := range res.Investors {
		assert.Zero(t, inv.ProfitShareAmount)
	}
	assert.Equal(t, -66100.0, res.NetProfit)
	require.NotNil(t, res.SaleValueSecondary)
	assert.Equal(t, 1250.0, *res.SaleValueSecondary)
}
