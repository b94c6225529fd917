package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Config configures metrics collection.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
}

func getDefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Namespace: "anonimizar",
	}
}

// Collector holds the Prometheus metrics of the anonymization service.
type Collector struct {
	config   *Config
	logger   *logrus.Logger
	registry *prometheus.Registry

	recordsProcessed      prometheus.Counter
	evaluationPasses      prometheus.Counter
	generalizationSteps   prometheus.Counter
	suppressedRecords     prometheus.Counter
	anonymizationDuration prometheus.Histogram
	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
}

// NewCollector creates and registers the metric set on a private
// registry.
func NewCollector(config *Config, logger *logrus.Logger) (*Collector, error) {
	if config == nil {
		config = getDefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	c := &Collector{
		config:   config,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	c.recordsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "records_processed_total",
		Help:      "Records run through the anonymization engine",
	})
	c.evaluationPasses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "evaluation_passes_total",
		Help:      "Evaluate/generalize passes executed",
	})
	c.generalizationSteps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "generalization_steps_total",
		Help:      "Individual field generalizations applied",
	})
	c.suppressedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "suppressed_records_total",
		Help:      "Records fully suppressed on exhaustion",
	})
	c.anonymizationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "anonymization_duration_seconds",
		Help:      "Wall time of complete anonymization runs",
		Buckets:   prometheus.DefBuckets,
	})
	c.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.Namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})
	c.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and path",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	collectors := []prometheus.Collector{
		c.recordsProcessed,
		c.evaluationPasses,
		c.generalizationSteps,
		c.suppressedRecords,
		c.anonymizationDuration,
		c.httpRequestsTotal,
		c.httpRequestDuration,
	}
	for _, collector := range collectors {
		if err := c.registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Registry exposes the private registry for the promhttp handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records the outcome of one anonymization run.
func (c *Collector) RecordRun(records, passes, generalized, suppressed int, duration time.Duration) {
	c.recordsProcessed.Add(float64(records))
	c.evaluationPasses.Add(float64(passes))
	c.generalizationSteps.Add(float64(generalized))
	c.suppressedRecords.Add(float64(suppressed))
	c.anonymizationDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
