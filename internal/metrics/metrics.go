package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for auth flows. A nil *Metrics is
// valid and records nothing, so tests can skip registration entirely.
type Metrics struct {
	Registrations   prometheus.Counter
	Logins          *prometheus.CounterVec
	TokenRefreshes  prometheus.Counter
	GuardRejections prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthcare_registrations_total",
			Help: "Total number of completed patient registrations",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthcare_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthcare_token_refreshes_total",
			Help: "Total number of successful token refreshes",
		}),
		GuardRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthcare_guard_rejections_total",
			Help: "Total number of requests rejected by the auth guard",
		}),
	}
}

func (m *Metrics) IncRegistrations() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}

func (m *Metrics) IncLogins(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncTokenRefreshes() {
	if m == nil {
		return
	}
	m.TokenRefreshes.Inc()
}

func (m *Metrics) IncGuardRejections() {
	if m == nil {
		return
	}
	m.GuardRejections.Inc()
}
