package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/fxrate"
	"github.com/stwalsh4118/landledger/internal/logger"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/report"
	"github.com/stwalsh4118/landledger/internal/repository"
)

var fixedNow = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

func newPortfolioService(repo *MockParcelRepository, rates RateSource) PortfolioService {
	svc := NewPortfolioService(repo, rates, config.ValuationConfig{GrowthPct: 5, HorizonYears: 5}, testAssessmentRules, logger.Nop())
	svc.(*portfolioService).now = func() time.Time { return fixedNow }
	return svc
}

func portfolioRows() []repository.ParcelRow {
	return []repository.ParcelRow{
		{ID: 1, Location: "Tujereng", Record: soldRecord()},
		{ID: 2, Location: "Kerr Serign", Record: models.Record{
			"location":       "Kerr Serign",
			"deal_stage":     "acquisition",
			"strategy":       "short_term_sale",
			"purchase_date":  "2024-01-15",
			"purchase_price": 100000.0,
			"investors": []interface{}{
				map[string]interface{}{"name": "Awa", "principal": 50000.0, "principal_secondary": 1000.0, "interest_rate": 0.12, "rate_basis": "monthly", "profit_share": 0.3},
			},
		}},
		{ID: 3, Location: "Sukuta", Record: models.Record{"location": "Sukuta", "deal_stage": "sale", "purchase_price": 20000.0}},
		{ID: 4, Location: "Brikama", Record: models.Record{"location": "Brikama", "deal_stage": "conversion"}},
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestPortfolioService_Summary(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	rates := new(MockRateSource)
	service := newPortfolioService(mockRepo, rates)

	mockRepo.On("List", mock.Anything).Return(portfolioRows(), nil)
	rates.On("Rate", mock.Anything).Return(20.0)

	out, err := service.Summary(context.Background(), SummaryParams{})

	require.NoError(t, err)
	assert.Equal(t, fixedNow, out.AsOf)
	assert.Equal(t, 5.0, out.GrowthPct)
	assert.Equal(t, 5, out.HorizonYears)
	require.NotNil(t, out.FXRate)
	assert.Equal(t, 20.0, *out.FXRate)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "Tujereng", out.Results[0].Location)
	assert.Equal(t, 23900.0, out.Results[0].NetProfit)
	require.NotNil(t, out.Results[0].NetProfitSecondary)
	assert.Equal(t, 1195.0, *out.Results[0].NetProfitSecondary)
	assert.Equal(t, models.PathActive, out.Results[1].Path)

	require.Len(t, out.Skipped, 2)
	assert.Equal(t, "Sukuta", out.Skipped[0].Location)
	assert.Equal(t, "Brikama", out.Skipped[1].Location)
	assert.NotNil(t, out.Warnings)

	require.Len(t, out.Assessments, len(portfolioRows()))
	assert.Equal(t, "Tujereng", out.Assessments[0].Location)
	assert.Equal(t, portfolio.AdviceDoubt, out.Assessments[0].Advice)

	mockRepo.AssertExpectations(t)
	rates.AssertExpectations(t)
}

func TestPortfolioService_SummaryFilterAndParams(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	rates := new(MockRateSource)
	service := newPortfolioService(mockRepo, rates)

	mockRepo.On("List", mock.Anything).Return(portfolioRows(), nil)
	rates.On("Rate", mock.Anything).Return(0.0)

	out, err := service.Summary(context.Background(), SummaryParams{
		GrowthPct:    floatPtr(10),
		HorizonYears: intPtr(3),
		Strategy:     "short_term_sale",
	})

	require.NoError(t, err)
	assert.Nil(t, out.FXRate)
	assert.Equal(t, 10.0, out.GrowthPct)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "Kerr Serign", out.Results[0].Location)
	assert.Nil(t, out.Results[0].NetProfitSecondary)
	assert.Empty(t, out.Skipped)
	require.Len(t, out.Assessments, 1)
	assert.Equal(t, "Kerr Serign", out.Assessments[0].Location)
}

func TestPortfolioService_SummaryRejectsParams(t *testing.T) {
	tests := []struct {
		name   string
		params SummaryParams
	}{
		{name: "negative growth", params: SummaryParams{GrowthPct: floatPtr(-1)}},
		{name: "growth too high", params: SummaryParams{GrowthPct: floatPtr(250)}},
		{name: "zero horizon", params: SummaryParams{HorizonYears: intPtr(0)}},
		{name: "horizon too long", params: SummaryParams{HorizonYears: intPtr(51)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockParcelRepository)
			service := newPortfolioService(mockRepo, new(MockRateSource))

			_, err := service.Summary(context.Background(), tt.params)

			assert.ErrorIs(t, err, ErrInvalidParameters)
			mockRepo.AssertNotCalled(t, "List", mock.Anything)
		})
	}
}

func TestPortfolioService_LoadError(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	rates := new(MockRateSource)
	service := newPortfolioService(mockRepo, rates)

	mockRepo.On("List", mock.Anything).Return(nil, errors.New("database is down"))
	rates.On("Rate", mock.Anything).Return(20.0).Maybe()

	_, err := service.Summary(context.Background(), SummaryParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is down")

	_, err = service.Payments(context.Background())
	assert.Error(t, err)
}

func TestPortfolioService_Payments(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	rates := new(MockRateSource)
	service := newPortfolioService(mockRepo, rates)

	mockRepo.On("List", mock.Anything).Return(portfolioRows(), nil)
	rates.On("Rate", mock.Anything).Return(20.0)

	payments, err := service.Payments(context.Background())

	require.NoError(t, err)
	// Awa monthly on Kerr Serign, Jan annually on Tujereng; the at-sale investor has no payments.
	require.Len(t, payments, 2)
	assert.Equal(t, "Awa", payments[0].Investor)
	assert.Equal(t, "Jan", payments[1].Investor)
	// 14 whole months since 2024-01-15 at 1% a month on 1000.
	assert.Equal(t, 140.0, payments[0].AccruedToDate)
	assert.Equal(t, 10.0, payments[0].NextPaymentAmount)
	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), payments[0].NextPaymentDate)
	// Jan only has a primary principal: 40000 at 20 is 2000, 5% a year for 3 years.
	assert.Equal(t, money.SecondaryCurrency, payments[1].Currency)
	assert.Equal(t, 100.0, payments[1].NextPaymentAmount)
	assert.Equal(t, 300.0, payments[1].AccruedToDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), payments[1].NextPaymentDate)
}

func TestPortfolioService_PaymentsWithoutRate(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	rates := new(MockRateSource)
	service := newPortfolioService(mockRepo, rates)

	mockRepo.On("List", mock.Anything).Return(portfolioRows(), nil)
	rates.On("Rate", mock.Anything).Return(0.0)

	payments, err := service.Payments(context.Background())

	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, money.SecondaryCurrency, payments[0].Currency)
	assert.Equal(t, money.PrimaryCurrency, payments[1].Currency)
	assert.Equal(t, 2000.0, payments[1].NextPaymentAmount)
}

func TestPortfolioService_Strategies(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	service := newPortfolioService(mockRepo, nil)

	rows := portfolioRows()
	rows[1].Record["expected_revenue"] = 4000.0
	rows[1].Record["expected_cost"] = 1000.0
	rows[3].Record["length_m"] = 20.0
	rows[3].Record["width_m"] = 30.0
	mockRepo.On("List", mock.Anything).Return(rows, nil)

	out, err := service.Strategies(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, out.KeyFigures.ParcelCount)
	assert.Equal(t, 600.0, out.KeyFigures.TotalAreaM2)
	require.Len(t, out.Strategies, 2)
	assert.Equal(t, models.StrategyShortTermSale, out.Strategies[0].Strategy)
	assert.Equal(t, 3000.0, out.Strategies[0].Profit)
}

func TestPortfolioService_Rollup(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	service := newPortfolioService(mockRepo, nil)

	rows := portfolioRows()
	rows[0].Record["sale_price_secondary"] = 9000.0
	rows[0].Record["purchase_price_secondary"] = 5000.0
	mockRepo.On("List", mock.Anything).Return(rows, nil)

	out, err := service.Rollup(context.Background(), "subdivide_and_sell")
	require.NoError(t, err)
	require.Len(t, out.Parcels, 1)
	assert.Equal(t, "Tujereng", out.Parcels[0].Location)
	assert.Equal(t, 4000.0, out.Parcels[0].TotalProfit)

	none, err := service.Rollup(context.Background(), "build_homes")
	require.NoError(t, err)
	assert.Empty(t, none.Parcels)
}

func TestPortfolioService_Report(t *testing.T) {
	mockRepo := new(MockParcelRepository)
	rates := new(MockRateSource)
	service := newPortfolioService(mockRepo, rates)

	mockRepo.On("List", mock.Anything).Return(portfolioRows(), nil)
	rates.On("Rate", mock.Anything).Return(20.0)

	raw, err := service.Report(context.Background(), SummaryParams{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetSummary, report.SheetInvestors, report.SheetPayments, report.SheetProfitPerYear, report.SheetStrategies, report.SheetAssessment}, f.GetSheetList())
	rows, err := f.GetRows(report.SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, "Tujereng", rows[1][0])

	assessment, err := f.GetRows(report.SheetAssessment)
	require.NoError(t, err)
	assert.Len(t, assessment, len(portfolioRows())+1)
}

func TestPortfolioService_ExchangeRate(t *testing.T) {
	rates := new(MockRateSource)
	service := newPortfolioService(new(MockParcelRepository), rates)

	snapshot := fxrate.Snapshot{Pair: "EUR/GMD", Rate: floatPtr(72.5)}
	rates.On("Snapshot", mock.Anything).Return(snapshot)

	assert.Equal(t, snapshot, service.ExchangeRate(context.Background()))
	assert.Equal(t, fxrate.Snapshot{}, newPortfolioService(new(MockParcelRepository), nil).ExchangeRate(context.Background()))
}
