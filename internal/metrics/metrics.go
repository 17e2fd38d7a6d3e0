package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"crclear/internal/faults"
)

const namespace = "crclear"

// Recorder collects run metrics. A nil *Recorder ignores every call.
type Recorder struct {
	registry   *prometheus.Registry
	buckets    *prometheus.CounterVec
	anomalies  *prometheus.CounterVec
	renewals   *prometheus.GaugeVec
	catalog    *prometheus.CounterVec
	quality    prometheus.Histogram
	stages     *prometheus.GaugeVec
	lastRun    prometheus.Gauge
	rejections prometheus.Counter
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		buckets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registrations classified, by disposition bucket.",
		}, []string{"bucket"}),
		anomalies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Non-fatal anomalies recorded on registrations, by kind.",
		}, []string{"kind"}),
		renewals: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "renewals",
			Help:      "Renewals at the end of a run, by whether a registration claimed them.",
		}, []string{"partition"}),
		catalog: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_records_total",
			Help:      "Catalog records read, by load outcome.",
		}, []string{"outcome"}),
		quality: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_match_quality",
			Help:      "Quality of catalog match candidates kept for review.",
			Buckets:   []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0, 1.2, 1.4},
		}),
		stages: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the most recent run of each stage.",
		}, []string{"stage"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics file was last written.",
		}),
		rejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_records_total",
			Help:      "Input lines that could not be decoded.",
		}),
	}
}

// ObserveBucket counts one registration in bucket.
func (r *Recorder) ObserveBucket(bucket string) {
	if r == nil {
		return
	}
	r.buckets.WithLabelValues(bucket).Inc()
}

// ObserveAnomaly counts one anomaly of kind.
func (r *Recorder) ObserveAnomaly(kind string) {
	if r == nil {
		return
	}
	r.anomalies.WithLabelValues(kind).Inc()
}

// ObserveMalformed counts an undecodable input line.
func (r *Recorder) ObserveMalformed() {
	if r == nil {
		return
	}
	r.rejections.Inc()
}

// SetRenewals records the final renewal partition sizes.
func (r *Recorder) SetRenewals(matched, unmatched int) {
	if r == nil {
		return
	}
	r.renewals.WithLabelValues("matched").Set(float64(matched))
	r.renewals.WithLabelValues("unmatched").Set(float64(unmatched))
}

// AddCatalogRecords counts catalog records with a load outcome such as
// "accepted", "skipped", or "rejected".
func (r *Recorder) AddCatalogRecords(outcome string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.catalog.WithLabelValues(outcome).Add(float64(n))
}

// ObserveQuality records the score of one kept catalog candidate.
func (r *Recorder) ObserveQuality(q float64) {
	if r == nil {
		return
	}
	r.quality.Observe(q)
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return faults.Wrap(faults.ErrIO, "metrics", "create directory", filepath.Dir(path), err)
	}
	r.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return faults.Wrap(faults.ErrIO, "metrics", "write textfile", path, err)
	}
	return nil
}
