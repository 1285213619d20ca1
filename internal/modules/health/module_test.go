package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rate_bot/internal/modules/health/service"
	metrics "rate_bot/internal/modules/metrics/service"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestMux(t *testing.T) {
	state := service.NewState()
	m := metrics.NewMetrics()
	mux := NewMux(state, m)

	code, body := get(t, mux, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, title, body)

	code, body = get(t, mux, "/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	code, _ = get(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	state.SetReady(true)
	state.SetScheduled(3)
	state.TouchTrade(time.Unix(1_700_000_000, 0))
	code, _ = get(t, mux, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	code, body = get(t, mux, "/healthz")
	require.Equal(t, http.StatusOK, code)
	var resp struct {
		Ready         bool  `json:"ready"`
		Scheduled     int   `json:"scheduled"`
		LastCycleUnix int64 `json:"lastCycleUnix"`
		LastTradeUnix int64 `json:"lastTradeUnix"`
	}
	require.NoError(t, sonic.UnmarshalString(body, &resp))
	assert.True(t, resp.Ready)
	assert.Equal(t, 3, resp.Scheduled)
	assert.Zero(t, resp.LastCycleUnix)
	assert.Equal(t, int64(1_700_000_000), resp.LastTradeUnix)

	code, _ = get(t, mux, "/unknown")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewMetrics()
	m.IncTrades()
	m.ObserveCycle("traded")
	mux := NewMux(service.NewState(), m)

	code, body := get(t, mux, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `trades_counter{app="rate-trading-bot"} 1`)
	assert.Contains(t, body, `trade_cycles_total{app="rate-trading-bot",outcome="traded"} 1`)
}
