package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeInactive = "inactive"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	// Rejected bearer tokens on protected routes.
	TokenRejections prometheus.Counter
	HashDuration    prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	// nil means a private registry nobody scrapes.
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		LoginAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),

		Registrations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),

		TokenRejections: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "auth_token_rejections_total",
			Help: "Bearer tokens rejected by the resolver.",
		}),

		HashDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "auth_password_hash_seconds",
			Help:    "Time spent hashing or verifying passwords.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
	}
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Register(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TokenRejected() {
	if m == nil {
		return
	}
	m.TokenRejections.Inc()
}

func (m *Metrics) ObserveHash(seconds float64) {
	if m == nil {
		return
	}
	m.HashDuration.Observe(seconds)
}
