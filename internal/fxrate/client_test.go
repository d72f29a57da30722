package fxrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/landledger/internal/config"
	"github.com/stwalsh4118/landledger/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.FXConfig{
		URL:     srv.URL,
		Token:   "secret-token",
		Base:    "EUR",
		Symbol:  "GMD",
		Timeout: 2 * time.Second,
	}, logger.Nop())
}

func TestClient_Latest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))
		assert.Equal(t, "GMD", r.URL.Query().Get("symbols"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"base":"EUR","rates":{"GMD":78.25}}`))
	})

	rate, err := client.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 78.25, rate)
	assert.Equal(t, "EUR/GMD", client.Pair())
}

func TestClient_LatestErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		missing bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false}`},
		{name: "symbol missing", status: http.StatusOK, body: `{"success":true,"rates":{"USD":1.1}}`, missing: true},
		{name: "provider failure flag", status: http.StatusOK, body: `{"success":false,"rates":{"GMD":70}}`, missing: true},
		{name: "zero rate", status: http.StatusOK, body: `{"rates":{"GMD":0}}`, missing: true},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			rate, err := client.Latest(context.Background())
			require.Error(t, err)
			assert.Zero(t, rate)
			if tt.missing {
				assert.ErrorIs(t, err, ErrRateMissing)
			}
		})
	}
}

func TestClient_Timeseries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timeseries", r.URL.Path)
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-01-31", r.URL.Query().Get("end_date"))

		_, _ = w.Write([]byte(`{"success":true,"rates":{
			"2025-01-03":{"GMD":72},
			"2025-01-01":{"GMD":70},
			"2025-01-02":{"USD":1.1},
			"garbage":{"GMD":1}
		}}`))
	})

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	points, err := client.Timeseries(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, []Point{
		{Date: from, Rate: 70},
		{Date: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Rate: 72},
	}, points)
}

func TestClient_TimeseriesError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Timeseries(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
}

func TestVolatility(t *testing.T) {
	series := []Point{{Rate: 70}, {Rate: 72}, {Rate: 74}, {Rate: 72}}
	v, ok := Volatility(series)
	require.True(t, ok)
	// mean 72, population std sqrt(2)
	assert.Equal(t, 1.96, v)

	_, ok = Volatility([]Point{{Rate: 70}})
	assert.False(t, ok)

	_, ok = Volatility([]Point{{Rate: 0}, {Rate: 0}})
	assert.False(t, ok)

	v, ok = Volatility([]Point{{Rate: 70}, {Rate: 70}})
	require.True(t, ok)
	assert.Zero(t, v)
}
