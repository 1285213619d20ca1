package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const appLabel = "rate-trading-bot"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	trades         prometheus.Counter
	cycles         *prometheus.CounterVec
	submitAttempts prometheus.Counter
	activeTasks    prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"app": appLabel}, reg)

	m := &Metrics{
		Registry: reg,
		trades: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trades_counter",
			Help: "Trades counter",
		}),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trade_cycles_total",
				Help: "Trade cycles by outcome (traded|skipped|aborted|failed)",
			},
			[]string{"outcome"},
		),
		submitAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trade_submit_attempts_total",
			Help: "Trade submissions sent to the venue, retries included",
		}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trade_scheduled_futures",
			Help: "Futures with a live trade timer",
		}),
	}

	wrapped.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.trades,
		m.cycles,
		m.submitAttempts,
		m.activeTasks,
	)
	return m
}

func (m *Metrics) IncTrades()                  { m.trades.Inc() }
func (m *Metrics) IncSubmitAttempts()          { m.submitAttempts.Inc() }
func (m *Metrics) ObserveCycle(outcome string) { m.cycles.WithLabelValues(outcome).Inc() }
func (m *Metrics) SetScheduled(n int)          { m.activeTasks.Set(float64(n)) }
