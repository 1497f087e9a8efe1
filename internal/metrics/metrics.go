// Package metrics exposes Prometheus counters for authentication and chat traffic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isdelr/wellness-be/internal/auth"
)

// Metrics holds the service's collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	tokenFailures *prometheus.CounterVec
	chatMessages  *prometheus.CounterVec
	chatSessions  prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	// Create a new registry to avoid polluting the global one
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_registrations_total",
			Help: "Total number of registration attempts by result",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_logins_total",
			Help: "Total number of login attempts by result",
		}, []string{"result"}),
		tokenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_token_failures_total",
			Help: "Total number of rejected bearer tokens by reason",
		}, []string{"reason"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wellness_chat_messages_total",
			Help: "Total number of chat messages answered by transport",
		}, []string{"transport"}),
		chatSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wellness_chat_sessions",
			Help: "Number of open chat websocket sessions",
		}),
	}
	reg.MustRegister(m.registrations, m.logins, m.tokenFailures, m.chatMessages, m.chatSessions)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registration records the outcome of a registration attempt.
func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

// Login records the outcome of a login attempt.
func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

// TokenFailure records a rejected bearer token. It matches the onFailure hook of
// auth.Middleware.
func (m *Metrics) TokenFailure(err error) {
	if m == nil {
		return
	}
	m.tokenFailures.WithLabelValues(auth.FailureReason(err)).Inc()
}

// ChatMessage records an answered chat message.
func (m *Metrics) ChatMessage(transport string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(transport).Inc()
}

// SetChatSessions sets the number of open chat sessions.
func (m *Metrics) SetChatSessions(n int) {
	if m == nil {
		return
	}
	m.chatSessions.Set(float64(n))
}
