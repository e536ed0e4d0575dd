package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalper_bot/internal/gateway"
	"scalper_bot/internal/models"
	"scalper_bot/internal/modules/config"
)

func bridgeClient(baseURL string) *Client {
	cfg := &config.Config{}
	cfg.Bridge = config.BridgeConfig{BaseURL: baseURL, Timeout: time.Second}
	return NewClient(cfg)
}

func TestBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bars", r.URL.Path)
		assert.Equal(t, "XAUUSD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "M1", r.URL.Query().Get("timeframe"))
		assert.Equal(t, "200", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`[
			{"time":1741608000,"open":2000.1,"high":2000.5,"low":1999.9,"close":2000.3,"tick_volume":120},
			{"time":1741608060,"open":2000.3,"high":2000.6,"low":2000.2,"close":2000.5,"tick_volume":98}
		]`))
	}))
	defer srv.Close()

	c := bridgeClient(srv.URL)
	bars, err := c.Bars(context.Background(), "XAUUSD", models.TimeframeM1, 200)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.InDelta(t, 2000.3, bars[0].Close, 1e-9)
	assert.Equal(t, time.Unix(1741608060, 0).UTC(), bars[1].Time)
}

func TestTickFallsBackToRESTWhenCacheStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tick", r.URL.Path)
		_, _ = w.Write([]byte(`{"bid":2000.25,"ask":2000.35,"time_msc":1741608000123}`))
	}))
	defer srv.Close()

	c := bridgeClient(srv.URL)
	tick, err := c.Tick(context.Background(), "XAUUSD")
	require.NoError(t, err)
	assert.InDelta(t, 2000.25, tick.Bid, 1e-9)
	assert.InDelta(t, 2000.35, tick.Ask, 1e-9)
}

func TestTickServedFromFreshCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"bid":1,"ask":2,"time_msc":1}`))
	}))
	defer srv.Close()

	c := bridgeClient(srv.URL)
	c.cacheTick(models.Tick{Bid: 2000.25, Ask: 2000.35, Time: time.Now()})

	tick, err := c.Tick(context.Background(), "XAUUSD")
	require.NoError(t, err)
	assert.InDelta(t, 2000.25, tick.Bid, 1e-9)
	assert.Zero(t, calls, "свежий кэш не ходит по REST")
}

func TestSubmitOrderMapsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/order", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"retcode":10009,"order":42,"price":2000.36,"comment":"done"}`))
	}))
	defer srv.Close()

	c := bridgeClient(srv.URL)
	res, err := c.SubmitOrder(context.Background(), models.OrderRequest{
		Symbol: "XAUUSD", Side: models.SideBuy, Lot: 0.5, Price: 2000.35, Fill: models.FillIOC,
	})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.EqualValues(t, 42, res.Ticket)
	assert.InDelta(t, 2000.36, res.FilledPrice, 1e-9)
}

func TestServerErrorMapsToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bridge down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := bridgeClient(srv.URL)
	_, err := c.Account(context.Background())
	require.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestConnectionErrorMapsToUnavailable(t *testing.T) {
	c := bridgeClient("http://127.0.0.1:1") // никто не слушает
	_, err := c.Tick(context.Background(), "XAUUSD")
	require.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestSymbolSpecRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/symbol", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"name":"XAUUSD","point":0.01,"digits":2,"trade_contract_size":100,
			"trade_tick_value":1,"volume_min":0.01,"volume_step":0.01,
			"volume_max":100,"trade_stops_level":15,"trade_freeze_level":5
		}`))
	}))
	defer srv.Close()

	c := bridgeClient(srv.URL)
	spec, err := c.SymbolSpec(context.Background(), "XAUUSD")
	require.NoError(t, err)
	require.NoError(t, gateway.ValidateSpec(spec))
	assert.Equal(t, 15, spec.StopsLevel)
}
