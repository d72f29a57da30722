package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/fxrate"
	"github.com/stwalsh4118/landledger/internal/logger"
	"github.com/stwalsh4118/landledger/internal/middleware"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockParcelService is a mock implementation of services.ParcelService for testing
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) List(ctx context.Context) ([]services.ParcelEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]services.ParcelEntry)
	return entries, args.Error(1)
}

func (m *MockParcelService) Get(ctx context.Context, location string) (*services.ParcelEntry, error) {
	args := m.Called(ctx, location)
	entry, _ := args.Get(0).(*services.ParcelEntry)
	return entry, args.Error(1)
}

func (m *MockParcelService) Create(ctx context.Context, record models.Record) (*services.ParcelEntry, error) {
	args := m.Called(ctx, record)
	entry, _ := args.Get(0).(*services.ParcelEntry)
	return entry, args.Error(1)
}

func (m *MockParcelService) Update(ctx context.Context, location string, record models.Record) (*services.ParcelEntry, error) {
	args := m.Called(ctx, location, record)
	entry, _ := args.Get(0).(*services.ParcelEntry)
	return entry, args.Error(1)
}

func (m *MockParcelService) Delete(ctx context.Context, location string) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockParcelService) StepStage(ctx context.Context, location, direction string) (*services.ParcelEntry, error) {
	args := m.Called(ctx, location, direction)
	entry, _ := args.Get(0).(*services.ParcelEntry)
	return entry, args.Error(1)
}

// MockPortfolioService is a mock implementation of services.PortfolioService for testing
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) Summary(ctx context.Context, params services.SummaryParams) (*services.SummaryReport, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*services.SummaryReport)
	return out, args.Error(1)
}

func (m *MockPortfolioService) Payments(ctx context.Context) ([]portfolio.Payment, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]portfolio.Payment)
	return out, args.Error(1)
}

func (m *MockPortfolioService) Rollup(ctx context.Context, strategy string) (*portfolio.Rollup, error) {
	args := m.Called(ctx, strategy)
	out, _ := args.Get(0).(*portfolio.Rollup)
	return out, args.Error(1)
}

func (m *MockPortfolioService) Strategies(ctx context.Context) (*services.StrategyReport, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*services.StrategyReport)
	return out, args.Error(1)
}

func (m *MockPortfolioService) Report(ctx context.Context, params services.SummaryParams) ([]byte, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

func (m *MockPortfolioService) ExchangeRate(ctx context.Context) fxrate.Snapshot {
	args := m.Called(ctx)
	return args.Get(0).(fxrate.Snapshot)
}

// setupTestRouter builds the full API router around mocked services.
func setupTestRouter(parcels services.ParcelService, portfolios services.PortfolioService) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))

	RegisterRoutes(router, Handlers{
		Health:    NewHealthHandler(nil, "test"),
		Parcel:    NewParcelHandler(parcels),
		Portfolio: NewPortfolioHandler(portfolios),
		Valuation: NewValuationHandler(config.ValuationConfig{GrowthPct: 5, HorizonYears: 5}, portfolio.AssessmentRules{
			HighInvestment:     800000,
			ExpectedValuePerM2: 400,
			MarketPrices:       map[string]float64{"Banjul": 3000},
		}),
	})
	return router
}
