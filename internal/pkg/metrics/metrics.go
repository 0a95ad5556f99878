package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zubari_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zubari_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	aiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zubari_ai_requests_total",
			Help: "Served AI requests by kind and tier",
		},
		[]string{"kind", "tier"},
	)
	quotaRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zubari_quota_rejections_total",
			Help: "AI requests refused because the free tier was used up",
		},
		[]string{"kind"},
	)
	usageRecordFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zubari_usage_record_failures_total",
			Help: "Usage recordings that failed on storage errors",
		},
	)
	paymentIntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zubari_payment_intents_total",
			Help: "Created payment intents by plan",
		},
		[]string{"plan"},
	)
	activationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zubari_subscription_activations_total",
			Help: "Completed subscription activations by plan",
		},
		[]string{"plan"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(aiRequestsTotal)
	prometheus.MustRegister(quotaRejectionsTotal)
	prometheus.MustRegister(usageRecordFailuresTotal)
	prometheus.MustRegister(paymentIntentsTotal)
	prometheus.MustRegister(activationsTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func AIRequestServed(kind, tier string) {
	aiRequestsTotal.WithLabelValues(kind, tier).Inc()
}

func QuotaRejected(kind string) {
	quotaRejectionsTotal.WithLabelValues(kind).Inc()
}

func UsageRecordFailed() {
	usageRecordFailuresTotal.Inc()
}

func PaymentIntentCreated(plan string) {
	paymentIntentsTotal.WithLabelValues(plan).Inc()
}

func SubscriptionActivated(plan string) {
	activationsTotal.WithLabelValues(plan).Inc()
}
