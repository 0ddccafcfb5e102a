package statistics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is a subsystem shared by all metrics exposed by this package
const MetricsSubsystem = "presale"

// Metrics contains metrics exposed by the node
type Metrics struct {
	// Last committed height
	Height metrics.Gauge
	// Delivered calls by type and code
	Calls metrics.Counter
	// Instructions which failed and reverted their parent call
	FailedInstructions metrics.Counter
	// Duration of a call including its instructions, in seconds
	CallDuration metrics.Histogram

	PrivateSoldAmount metrics.Gauge
	PublicSoldAmount  metrics.Gauge
	Participants      metrics.Gauge

	// API response time by path, in seconds
	APIResponseTime metrics.Gauge
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}

	return &Metrics{
		Height: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "height",
			Help:      "Last committed height.",
		}, labels).With(labelsAndValues...),
		Calls: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "calls",
			Help:      "Number of delivered calls.",
		}, append(labels, "type", "code")).With(labelsAndValues...),
		FailedInstructions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "failed_instructions",
			Help:      "Number of failed instructions, each reverted its call.",
		}, append(labels, "type")).With(labelsAndValues...),
		CallDuration: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "call_duration_seconds",
			Help:      "Time of a call with its instructions.",
			Buckets:   stdprometheus.ExponentialBuckets(0.0005, 2, 12),
		}, labels).With(labelsAndValues...),
		PrivateSoldAmount: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "private_sold_amount",
			Help:      "Reward amount sold in the private phase.",
		}, labels).With(labelsAndValues...),
		PublicSoldAmount: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "public_sold_amount",
			Help:      "Reward amount sold in the public phase.",
		}, labels).With(labelsAndValues...),
		Participants: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "participants",
			Help:      "Number of sale participants.",
		}, labels).With(labelsAndValues...),
		APIResponseTime: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "api_response_seconds",
			Help:      "Api response time by path.",
		}, append(labels, "path")).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics
func NopMetrics() *Metrics {
	return &Metrics{
		Height:             discard.NewGauge(),
		Calls:              discard.NewCounter(),
		FailedInstructions: discard.NewCounter(),
		CallDuration:       discard.NewHistogram(),
		PrivateSoldAmount:  discard.NewGauge(),
		PublicSoldAmount:   discard.NewGauge(),
		Participants:       discard.NewGauge(),
		APIResponseTime:    discard.NewGauge(),
	}
}
