// Package fxrate fetches exchange rates from an fxratesapi.com compatible
// provider and keeps the latest known rate for the rest of the service.
package fxrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/logger"
)

// ErrRateMissing is returned when the provider answers without the requested symbol.
var ErrRateMissing = errors.New("exchange rate missing from provider response")

// Point is one day of a rate time series.
type Point struct {
	Date time.Time `json:"date"`
	Rate float64   `json:"rate"`
}

// Client talks to the exchange-rate provider.
type Client struct {
	http   *resty.Client
	base   string
	symbol string
	log    *logger.Logger
}

type latestResponse struct {
	Success *bool              `json:"success"`
	Base    string             `json:"base"`
	Rates   map[string]float64 `json:"rates"`
}

type timeseriesResponse struct {
	Success *bool                         `json:"success"`
	Rates   map[string]map[string]float64 `json:"rates"`
}

// NewClient creates a provider client from configuration.
func NewClient(cfg config.FXConfig, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		http.SetAuthToken(cfg.Token)
	}

	return &Client{
		http:   http,
		base:   cfg.Base,
		symbol: cfg.Symbol,
		log:    log.WithComponent("fxrate"),
	}
}

// Pair names the currencies the client quotes, e.g. "EUR/GMD".
func (c *Client) Pair() string {
	return c.base + "/" + c.symbol
}

// Latest returns the current number of symbol units per base unit.
func (c *Client) Latest(ctx context.Context) (float64, error) {
	c.log.Debug("requesting latest rate", map[string]interface{}{"pair": c.Pair()})

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"base":    c.base,
			"symbols": c.symbol,
		}).
		Get("/latest")
	if err != nil {
		return 0, fmt.Errorf("failed to reach exchange rate provider: %w", err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("exchange rate provider returned status %d", resp.StatusCode())
	}

	var body latestResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return 0, fmt.Errorf("failed to decode latest rate: %w", err)
	}
	if body.Success != nil && !*body.Success {
		return 0, fmt.Errorf("%w: provider reported failure", ErrRateMissing)
	}

	rate, ok := body.Rates[c.symbol]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrRateMissing, c.symbol)
	}
	return rate, nil
}

// Timeseries returns the daily rates between from and to, oldest first.
// Days without a quote for the symbol are left out.
func (c *Client) Timeseries(ctx context.Context, from, to time.Time) ([]Point, error) {
	c.log.Debug("requesting rate series", map[string]interface{}{
		"pair": c.Pair(),
		"from": dates.Format(from),
		"to":   dates.Format(to),
	})

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"base":       c.base,
			"symbols":    c.symbol,
			"start_date": dates.Format(from),
			"end_date":   dates.Format(to),
		}).
		Get("/timeseries")
	if err != nil {
		return nil, fmt.Errorf("failed to reach exchange rate provider: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("exchange rate provider returned status %d", resp.StatusCode())
	}

	var body timeseriesResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("failed to decode rate series: %w", err)
	}

	points := make([]Point, 0, len(body.Rates))
	for day, quotes := range body.Rates {
		rate, ok := quotes[c.symbol]
		if !ok {
			continue
		}
		date, ok := dates.Parse(day)
		if !ok {
			c.log.Warn("skipping undated rate", map[string]interface{}{"date": day})
			continue
		}
		points = append(points, Point{Date: date, Rate: rate})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}
