package obs

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500}
	} else {
		sort.Float64s(buckets)
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur, m.InFlight)
	return m
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

var (
	domainOnce sync.Once

	// CheckoutTotal counts sale checkout outcomes by payment method.
	CheckoutTotal *prometheus.CounterVec
	// ImportExtractionTotal counts supplier bill extraction outcomes.
	ImportExtractionTotal *prometheus.CounterVec
	// ImportCommitTotal counts staged import commit outcomes.
	ImportCommitTotal *prometheus.CounterVec
	// ImportCommitRows records the size of committed staging lists.
	ImportCommitRows prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_checkout_total",
			Help:      "Count of sale checkout attempts by payment method and result.",
		}, []string{"method", "result"})
		ImportExtractionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_extraction_total",
			Help:      "Count of supplier bill extraction outcomes.",
		}, []string{"result"})
		ImportCommitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_commit_total",
			Help:      "Count of staged import commit outcomes.",
		}, []string{"result"})
		ImportCommitRows = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_commit_rows",
			Help:      "Number of staged rows per committed import.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		})
		reg.MustRegister(CheckoutTotal, ImportExtractionTotal, ImportCommitTotal, ImportCommitRows)
	})
}
