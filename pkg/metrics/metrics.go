package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records upload-pipeline and product-transaction outcomes.
type Metrics struct {
	uploadDuration *prometheus.HistogramVec
	uploadSuccess  *prometheus.CounterVec
	uploadFailure  *prometheus.CounterVec
	txSuccess      *prometheus.CounterVec
	txFailure      *prometheus.CounterVec
}

// New registers the service metrics on the provided registerer. A nil
// registerer yields a no-op recorder, which tests rely on.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	uploadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "media_upload_duration_seconds",
		Help:    "Duration of media uploads in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mime"})
	uploadSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_upload_success",
		Help: "Successful media uploads.",
	}, []string{"mime"})
	uploadFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_upload_failure",
		Help: "Failed media uploads.",
	}, []string{"mime", "reason"})
	txSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_transaction_success",
		Help: "Committed product association transactions.",
	}, []string{"operation"})
	txFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "product_transaction_failure",
		Help: "Rolled-back product association transactions.",
	}, []string{"operation"})
	reg.MustRegister(uploadDuration, uploadSuccess, uploadFailure, txSuccess, txFailure)
	return &Metrics{
		uploadDuration: uploadDuration,
		uploadSuccess:  uploadSuccess,
		uploadFailure:  uploadFailure,
		txSuccess:      txSuccess,
		txFailure:      txFailure,
	}
}

// ObserveUpload records one upload attempt.
func (m *Metrics) ObserveUpload(mime string, duration time.Duration, err error, reason string) {
	if m == nil || m.uploadDuration == nil {
		return
	}
	label := normalizeLabel(mime)
	m.uploadDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		m.uploadFailure.WithLabelValues(label, normalizeLabel(reason)).Inc()
		return
	}
	m.uploadSuccess.WithLabelValues(label).Inc()
}

// IncTransaction records one product association transaction outcome.
func (m *Metrics) IncTransaction(operation string, err error) {
	if m == nil || m.txSuccess == nil {
		return
	}
	if err != nil {
		m.txFailure.WithLabelValues(normalizeLabel(operation)).Inc()
		return
	}
	m.txSuccess.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
