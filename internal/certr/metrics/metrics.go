package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the issuance pipeline's counters behind one prometheus
// registry so the serve command can expose them on /metrics.
type Registry struct {
	reg *prometheus.Registry

	CertificatesIssued   prometheus.Counter
	BatchesIssued        prometheus.Counter
	BatchesReverted      prometheus.Counter
	RevocationsConfirmed prometheus.Counter
	IndexWriteFailures   prometheus.Counter
	ConfirmLatencySec    prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	issued := prometheus.NewCounter(prometheus.CounterOpts{Name: "certr_certificates_issued_total"})
	batches := prometheus.NewCounter(prometheus.CounterOpts{Name: "certr_batches_issued_total"})
	reverted := prometheus.NewCounter(prometheus.CounterOpts{Name: "certr_batches_reverted_total"})
	revoked := prometheus.NewCounter(prometheus.CounterOpts{Name: "certr_revocations_confirmed_total"})
	indexFail := prometheus.NewCounter(prometheus.CounterOpts{Name: "certr_index_write_failures_total"})
	confirmLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "certr_confirm_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(issued, batches, reverted, revoked, indexFail, confirmLatency)
	return &Registry{
		reg:                  r,
		CertificatesIssued:   issued,
		BatchesIssued:        batches,
		BatchesReverted:      reverted,
		RevocationsConfirmed: revoked,
		IndexWriteFailures:   indexFail,
		ConfirmLatencySec:    confirmLatency,
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
