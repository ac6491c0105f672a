package libcvss

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvsscalc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "A total count of http requests by route and status code.",
		},
		[]string{"route", "code", "method"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cvsscalc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Distribution of request durations by route.",
		},
		[]string{"route", "code", "method"},
	)
)

// Instrument wraps "next" with the request metrics, labeled with "route".
func instrument(route string, next http.Handler) http.Handler {
	l := prometheus.Labels{"route": route}
	return promhttp.InstrumentHandlerCounter(
		requestCounter.MustCurryWith(l),
		promhttp.InstrumentHandlerDuration(
			requestDuration.MustCurryWith(l),
			next,
		),
	)
}
