package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gateScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_scans_total",
			Help: "Gate scans by outcome",
		},
		[]string{"outcome"},
	)

	gateScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkin_scan_duration_seconds",
			Help:    "Time spent verifying one gate scan",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"outcome"},
	)

	pricingQuotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Pricing computations by status",
		},
		[]string{"status"},
	)

	discountResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_resolutions_total",
			Help: "Discount code resolutions by kind and result",
		},
		[]string{"kind", "result"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transitions",
		},
		[]string{"status"},
	)
)

// Monitor is a thin handle over the package collectors so services can take
// it as a dependency.
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) ObserveScan(outcome string, elapsed time.Duration) {
	gateScans.WithLabelValues(outcome).Inc()
	gateScanDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *Monitor) TrackQuote(status string) {
	pricingQuotes.WithLabelValues(status).Inc()
}

func (m *Monitor) TrackDiscount(kind, result string) {
	discountResolutions.WithLabelValues(kind, result).Inc()
}

func (m *Monitor) TrackBooking(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}
