package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/fxrate"
	"github.com/stwalsh4118/landledger/internal/logger"
	"github.com/stwalsh4118/landledger/internal/models"
	"github.com/stwalsh4118/landledger/internal/money"
	"github.com/stwalsh4118/landledger/internal/portfolio"
	"github.com/stwalsh4118/landledger/internal/report"
	"github.com/stwalsh4118/landledger/internal/repository"
)

// Projection limits accepted from callers.
const (
	MaxGrowthPct    = 100.0
	MinHorizonYears = 1
	MaxHorizonYears = 50
)

// RateSource supplies the current exchange rate. *fxrate.Cache implements it.
type RateSource interface {
	// Rate returns the home-per-foreign rate, or 0 when unavailable.
	Rate(ctx context.Context) float64
	Snapshot(ctx context.Context) fxrate.Snapshot
}

// SummaryParams narrows and tunes a portfolio summary. Nil projection fields
// fall back to the configured defaults; an empty strategy selects every parcel.
type SummaryParams struct {
	GrowthPct    *float64
	HorizonYears *int
	Strategy     string
}

// SummaryReport is a portfolio summary together with the inputs it was computed from.
type SummaryReport struct {
	portfolio.Summary
	AsOf         time.Time              `json:"as_of"`
	GrowthPct    float64                `json:"growth_pct"`
	HorizonYears int                    `json:"horizon_years"`
	FXRate       *float64               `json:"fx_rate"`
	Warnings     []portfolio.Warning    `json:"warnings"`
	Assessments  []portfolio.Assessment `json:"assessments"`
}

// StrategyReport is the strategy overview with the portfolio's key figures.
type StrategyReport struct {
	Strategies []portfolio.StrategySummary `json:"strategies"`
	KeyFigures portfolio.KeyFigures        `json:"key_figures"`
}

// PortfolioService defines the portfolio analytics operations.
type PortfolioService interface {
	// Summary values every parcel. Returns ErrInvalidParameters for a growth
	// rate or horizon outside the accepted range.
	Summary(ctx context.Context, params SummaryParams) (*SummaryReport, error)

	// Payments lists the next interest payment per investor, soonest first.
	Payments(ctx context.Context) ([]portfolio.Payment, error)

	// Rollup spreads planned and realised profit over years and months.
	Rollup(ctx context.Context, strategy string) (*portfolio.Rollup, error)

	// Strategies groups expected figures by strategy.
	Strategies(ctx context.Context) (*StrategyReport, error)

	// Report renders all of the above as an XLSX workbook.
	Report(ctx context.Context, params SummaryParams) ([]byte, error)

	// ExchangeRate returns what is currently known about the exchange rate.
	ExchangeRate(ctx context.Context) fxrate.Snapshot
}

type portfolioService struct {
	repo     repository.ParcelRepository
	rates    RateSource
	defaults config.ValuationConfig
	rules    portfolio.AssessmentRules
	log      *logger.Logger
	now      func() time.Time
}

// NewPortfolioService creates a new instance of PortfolioService.
func NewPortfolioService(repo repository.ParcelRepository, rates RateSource, defaults config.ValuationConfig, rules portfolio.AssessmentRules, log *logger.Logger) PortfolioService {
	return &portfolioService{
		repo:     repo,
		rates:    rates,
		defaults: defaults,
		rules:    rules,
		log:      log.WithComponent("portfolio_service"),
		now:      time.Now,
	}
}

type projection struct {
	growthPct    float64
	horizonYears int
	strategy     models.Strategy
}

func (s *portfolioService) resolve(params SummaryParams) (projection, error) {
	p := projection{
		growthPct:    s.defaults.GrowthPct,
		horizonYears: s.defaults.HorizonYears,
		strategy:     models.ParseStrategy(params.Strategy),
	}
	if params.GrowthPct != nil {
		p.growthPct = *params.GrowthPct
	}
	if params.HorizonYears != nil {
		p.horizonYears = *params.HorizonYears
	}

	if math.IsNaN(p.growthPct) || p.growthPct < 0 || p.growthPct > MaxGrowthPct {
		return p, fmt.Errorf("%w: growth_pct must be between 0 and %.0f, got %v", ErrInvalidParameters, MaxGrowthPct, p.growthPct)
	}
	if p.horizonYears < MinHorizonYears || p.horizonYears > MaxHorizonYears {
		return p, fmt.Errorf("%w: horizon_years must be between %d and %d, got %d", ErrInvalidParameters, MinHorizonYears, MaxHorizonYears, p.horizonYears)
	}
	return p, nil
}

// load reads every parcel and, when withRate is set, the exchange rate at the
// same time. A missing rate is not an error.
func (s *portfolioService) load(ctx context.Context, withRate bool) ([]models.Parcel, float64, error) {
	var rows []repository.ParcelRow
	var fx float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx)
		return err
	})
	if withRate && s.rates != nil {
		g.Go(func() error {
			fx = s.rates.Rate(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load parcels", err, nil)
		return nil, 0, fmt.Errorf("failed to load parcels: %w", err)
	}

	parcels := make([]models.Parcel, 0, len(rows))
	for _, row := range rows {
		parcels = append(parcels, models.NormalizeParcel(row.Record))
	}

	if withRate && !money.RateAvailable(fx) {
		s.log.Warn("Exchange rate unavailable, converted amounts omitted", nil)
	}
	return parcels, fx, nil
}

func (s *portfolioService) summarize(parcels []models.Parcel, p projection, fx float64, asOf time.Time) *SummaryReport {
	summary := portfolio.SummarizePortfolio(parcels, p.strategy, p.growthPct, p.horizonYears, fx, asOf)
	for _, skipped := range summary.Skipped {
		s.log.Warn("Parcel not valued", map[string]interface{}{
			"location":   skipped.Location,
			"deal_stage": skipped.DealStage,
			"reason":     skipped.Reason,
		})
	}

	warnings := portfolio.PortfolioWarnings(parcels)
	for _, w := range warnings {
		s.log.Warn("Parcel data warning", map[string]interface{}{
			"location": w.Location,
			"code":     w.Code,
		})
	}
	if warnings == nil {
		warnings = []portfolio.Warning{}
	}

	selected := parcels
	if p.strategy != models.StrategyNone {
		selected = make([]models.Parcel, 0, len(parcels))
		for _, parcel := range parcels {
			if parcel.Strategy == p.strategy {
				selected = append(selected, parcel)
			}
		}
	}

	var rate *float64
	if money.RateAvailable(fx) {
		rate = money.Ptr(fx)
	}
	return &SummaryReport{
		Summary:      summary,
		AsOf:         asOf,
		GrowthPct:    p.growthPct,
		HorizonYears: p.horizonYears,
		FXRate:       rate,
		Warnings:     warnings,
		Assessments:  portfolio.AssessAll(selected, s.rules),
	}
}

func (s *portfolioService) Summary(ctx context.Context, params SummaryParams) (*SummaryReport, error) {
	p, err := s.resolve(params)
	if err != nil {
		return nil, err
	}

	s.log.Info("Summarizing portfolio", map[string]interface{}{
		"growth_pct":    p.growthPct,
		"horizon_years": p.horizonYears,
		"strategy":      p.strategy,
	})

	parcels, fx, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}

	out := s.summarize(parcels, p, fx, s.now())
	s.log.Info("Portfolio summarized", map[string]interface{}{
		"valued":  len(out.Results),
		"skipped": len(out.Skipped),
	})
	return out, nil
}

func (s *portfolioService) Payments(ctx context.Context) ([]portfolio.Payment, error) {
	parcels, fx, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}
	payments := portfolio.BuildUpcomingPayments(parcels, fx, s.now())
	s.log.Debug("Upcoming payments built", map[string]interface{}{
		"count": len(payments),
	})
	return payments, nil
}

func (s *portfolioService) Rollup(ctx context.Context, strategy string) (*portfolio.Rollup, error) {
	parcels, _, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	rollup := portfolio.YearlyProfitRollup(parcels, models.ParseStrategy(strategy), s.now())
	return &rollup, nil
}

func (s *portfolioService) Strategies(ctx context.Context) (*StrategyReport, error) {
	parcels, _, err := s.load(ctx, false)
	if err != nil {
		return nil, err
	}
	return &StrategyReport{
		Strategies: portfolio.StrategyOverview(parcels),
		KeyFigures: portfolio.ComputeKeyFigures(parcels),
	}, nil
}

func (s *portfolioService) Report(ctx context.Context, params SummaryParams) ([]byte, error) {
	p, err := s.resolve(params)
	if err != nil {
		return nil, err
	}

	parcels, fx, err := s.load(ctx, true)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	summary := s.summarize(parcels, p, fx, asOf)

	raw, err := report.Generate(report.Data{
		GeneratedAt: asOf,
		FXRate:      fx,
		Summary:     summary.Summary,
		Payments:    portfolio.BuildUpcomingPayments(parcels, fx, asOf),
		Rollup:      portfolio.YearlyProfitRollup(parcels, p.strategy, asOf),
		Strategies:  portfolio.StrategyOverview(parcels),
		KeyFigures:  portfolio.ComputeKeyFigures(parcels),
		Assessments: summary.Assessments,
	})
	if err != nil {
		s.log.Error("Failed to generate report", err, nil)
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	s.log.Info("Portfolio report generated", map[string]interface{}{
		"parcels": len(parcels),
		"bytes":   len(raw),
	})
	return raw, nil
}

func (s *portfolioService) ExchangeRate(ctx context.Context) fxrate.Snapshot {
	if s.rates == nil {
		return fxrate.Snapshot{}
	}
	return s.rates.Snapshot(ctx)
}
