package client

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// instrument wraps next with a request counter and a latency histogram
// labelled by method and status code.
func instrument(reg prometheus.Registerer, next http.RoundTripper) (http.RoundTripper, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genius",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Outbound Genius API requests by method and status code.",
	}, []string{"method", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "genius",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency of outbound Genius API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})

	for _, c := range []prometheus.Collector{requests, duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering client metrics: %w", err)
		}
	}

	rt := promhttp.InstrumentRoundTripperDuration(duration, next)
	rt = promhttp.InstrumentRoundTripperCounter(requests, rt)

	return rt, nil
}
