package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_ObserveScan(t *testing.T) {
	m := NewMonitor()
	before := testutil.ToFloat64(gateScans.WithLabelValues("ADMITTED"))

	m.ObserveScan("ADMITTED", 5*time.Millisecond)
	m.ObserveScan("ADMITTED", 7*time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(gateScans.WithLabelValues("ADMITTED")))
}

func TestMonitor_Counters(t *testing.T) {
	m := NewMonitor()
	q := testutil.ToFloat64(pricingQuotes.WithLabelValues("ok"))
	d := testutil.ToFloat64(discountResolutions.WithLabelValues("INFLUENCER", "applied"))
	b := testutil.ToFloat64(bookingTransitions.WithLabelValues("CONFIRMED"))

	m.TrackQuote("ok")
	m.TrackDiscount("INFLUENCER", "applied")
	m.TrackBooking("CONFIRMED")

	assert.Equal(t, q+1, testutil.ToFloat64(pricingQuotes.WithLabelValues("ok")))
	assert.Equal(t, d+1, testutil.ToFloat64(discountResolutions.WithLabelValues("INFLUENCER", "applied")))
	assert.Equal(t, b+1, testutil.ToFloat64(bookingTransitions.WithLabelValues("CONFIRMED")))
}
