package adapthttp

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds auth-related Prometheus collectors on a private registry so
// multiple Server instances (e.g. in tests) never collide.
type metrics struct {
	registry *prometheus.Registry

	logins             *prometheus.CounterVec
	tokenRejections    prometheus.Counter
	refreshSuggestions prometheus.Counter
	refreshes          *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		tokenRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_token_rejections_total",
			Help: "Session tokens rejected by the auth middleware.",
		}),
		refreshSuggestions: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_refresh_suggestions_total",
			Help: "Requests answered with the X-Refresh-Token header set.",
		}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_token_refreshes_total",
			Help: "Bearer-token refresh attempts by result.",
		}, []string{"result"}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
