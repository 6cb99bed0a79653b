// Package metrics объявляет метрики Prometheus книжного клуба.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций аутентификации.
const (
	OutcomeSuccess          = "success"
	OutcomeDuplicate        = "duplicate_email"
	OutcomeUserNotFound     = "user_not_found"
	OutcomeInvalidPassword  = "invalid_credentials"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeError            = "error"
)

// Metrics содержит коллекторы приложения.
type Metrics struct {
	AuthAttempts    *prometheus.CounterVec
	Sessions        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookclub",
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by outcome.",
		}, []string{"operation", "outcome"}),
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookclub",
			Name:      "sessions_total",
			Help:      "Session lifecycle events.",
		}, []string{"event"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookclub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}
	reg.MustRegister(m.AuthAttempts, m.Sessions, m.RequestDuration)
	return m
}

// ObserveAuth увеличивает счётчик попыток операции op с исходом outcome.
func (m *Metrics) ObserveAuth(op, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(op, outcome).Inc()
}

// ObserveSession отмечает событие жизненного цикла сессии (created, destroyed).
func (m *Metrics) ObserveSession(event string) {
	if m == nil {
		return
	}
	m.Sessions.WithLabelValues(event).Inc()
}
