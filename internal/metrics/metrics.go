// Package metrics exposes Prometheus collectors for the bot and the HTTP
// endpoint that serves them.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m3rciful/iskra/internal/domain"
)

// Metrics holds every collector. Its methods satisfy the observer hooks of
// the middleware chain, the router, the sender and the matching engine.
type Metrics struct {
	registry *prometheus.Registry

	updatesTotal    *prometheus.CounterVec
	updateDuration  *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
	handlersTotal   *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	sendsTotal      *prometheus.CounterVec
	interactions    *prometheus.CounterVec
	matchesTotal    *prometheus.CounterVec
	sessions        prometheus.Gauge
	sessionsPruned  prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		updatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_updates_total",
			Help: "Telegram updates processed by kind and status",
		}, []string{"kind", "status"}),
		updateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iskra_update_duration_seconds",
			Help:    "Time spent in the middleware chain per update",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),
		rateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_rate_limited_total",
			Help: "Updates dropped by the per-user rate limiter",
		}, []string{"kind"}),
		handlersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_handler_calls_total",
			Help: "Routed handler invocations by route, handler and error code",
		}, []string{"route", "handler", "code"}),
		handlerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iskra_handler_duration_seconds",
			Help:    "Routed handler duration",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"route"}),
		sendsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_outbound_total",
			Help: "Outbound Telegram calls by action and status",
		}, []string{"action", "status"}),
		interactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_interactions_total",
			Help: "Recorded interactions by action",
		}, []string{"action"}),
		matchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_matches_total",
			Help: "Match lookups that completed a mutual like, by outcome",
		}, []string{"outcome"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "iskra_sessions",
			Help: "Conversation sessions held in memory",
		}),
		sessionsPruned: f.NewCounter(prometheus.CounterOpts{
			Name: "iskra_sessions_pruned_total",
			Help: "Sessions dropped for inactivity",
		}),
	}
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// ObserveUpdate implements middleware.UpdateObserver.
func (m *Metrics) ObserveUpdate(kind string, took time.Duration, err error) {
	m.updatesTotal.WithLabelValues(kind, status(err)).Inc()
	m.updateDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// RateLimited counts an update dropped by the limiter.
func (m *Metrics) RateLimited(kind string) {
	m.rateLimited.WithLabelValues(kind).Inc()
}

// ObserveHandler implements router.HandlerObserver.
func (m *Metrics) ObserveHandler(route, handler string, took time.Duration, err error) {
	code := "ok"
	if err != nil {
		code = string(domain.KindOf(err))
		var coded interface{ Code() string }
		if errors.As(err, &coded) {
			code = coded.Code()
		}
	}
	m.handlersTotal.WithLabelValues(route, handler, code).Inc()
	m.handlerDuration.WithLabelValues(route).Observe(took.Seconds())
}

// SendResult is the sender dispatcher's result hook.
func (m *Metrics) SendResult(action string, err error) {
	m.sendsTotal.WithLabelValues(action, status(err)).Inc()
}

// ObserveInteraction implements matching.Observer.
func (m *Metrics) ObserveInteraction(action domain.Action) {
	m.interactions.WithLabelValues(string(action)).Inc()
}

// ObserveMatch implements matching.Observer.
func (m *Metrics) ObserveMatch(created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.matchesTotal.WithLabelValues(outcome).Inc()
}

// SetSessions records the current session count.
func (m *Metrics) SetSessions(n int) { m.sessions.Set(float64(n)) }

// SessionsPruned counts sessions removed by a sweep.
func (m *Metrics) SessionsPruned(n int) { m.sessionsPruned.Add(float64(n)) }
