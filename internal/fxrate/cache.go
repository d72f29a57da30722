package fxrate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/stwalsh4118/landledger/internal/dates"
	"github.com/stwalsh4118/landledger/internal/logger"
)

// Provider is the source of exchange rates. *Client implements it.
type Provider interface {
	Pair() string
	Latest(ctx context.Context) (float64, error)
	Timeseries(ctx context.Context, from, to time.Time) ([]Point, error)
}

// Snapshot is what the cache currently knows. Nil fields are unknown.
type Snapshot struct {
	Pair       string     `json:"pair"`
	Rate       *float64   `json:"rate"`
	Volatility *float64   `json:"volatility_pct"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// Cache keeps the last good rate so that requests never wait on, or fail
// because of, the provider.
type Cache struct {
	provider   Provider
	windowDays int
	log        *logger.Logger
	now        func() time.Time
	cold       singleflight.Group

	mu         sync.RWMutex
	rate       float64
	volatility *float64
	updatedAt  time.Time
}

// NewCache creates an empty cache. windowDays is the look-back used for volatility.
func NewCache(provider Provider, windowDays int, log *logger.Logger) *Cache {
	return &Cache{
		provider:   provider,
		windowDays: windowDays,
		log:        log.WithComponent("fxrate"),
		now:        time.Now,
	}
}

// Refresh fetches the latest rate and recomputes volatility. A failed rate
// fetch keeps the previous rate and returns the error; a failed series fetch
// only keeps the previous volatility.
func (c *Cache) Refresh(ctx context.Context) error {
	rate, err := c.provider.Latest(ctx)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", c.provider.Pair(), err)
	}

	to := dates.Day(c.now())
	from := to.AddDate(0, 0, -c.windowDays)
	var volatility *float64
	series, seriesErr := c.provider.Timeseries(ctx, from, to)
	if seriesErr != nil {
		c.log.Warn("rate series unavailable, keeping previous volatility", map[string]interface{}{
			"pair":  c.provider.Pair(),
			"error": seriesErr.Error(),
		})
	} else if v, ok := Volatility(series); ok {
		volatility = &v
	}

	c.mu.Lock()
	c.rate = rate
	if seriesErr == nil {
		c.volatility = volatility
	}
	c.updatedAt = c.now()
	c.mu.Unlock()

	c.log.Info("exchange rate refreshed", map[string]interface{}{
		"pair":   c.provider.Pair(),
		"rate":   rate,
		"points": len(series),
	})
	return nil
}

// Rate returns the cached rate. When nothing is cached yet it makes one
// refresh attempt, shared by every caller waiting at that moment; if that
// fails the rate is 0, meaning unavailable.
func (c *Cache) Rate(ctx context.Context) float64 {
	c.mu.RLock()
	rate := c.rate
	c.mu.RUnlock()
	if rate > 0 {
		return rate
	}

	_, err, _ := c.cold.Do("refresh", func() (interface{}, error) {
		return nil, c.Refresh(ctx)
	})
	if err != nil {
		c.log.Error("exchange rate unavailable", err, nil)
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

// Snapshot returns the cached state, refreshing first if nothing is known.
func (c *Cache) Snapshot(ctx context.Context) Snapshot {
	c.Rate(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{Pair: c.provider.Pair()}
	if c.rate > 0 {
		rate := c.rate
		s.Rate = &rate
		updated := c.updatedAt
		s.UpdatedAt = &updated
	}
	if c.volatility != nil {
		v := *c.volatility
		s.Volatility = &v
	}
	return s
}
