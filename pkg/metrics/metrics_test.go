package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg, "vetsched", "engine")

	m.AppointmentsBooked.WithLabelValues("wellness").Inc()
	m.BookingConflicts.WithLabelValues("provider").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AppointmentsBooked.WithLabelValues("wellness")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingConflicts.WithLabelValues("provider")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "vetsched_engine_appointments_booked_total")
}

func TestNewNopIsRepeatable(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop()
		NewNop()
	})
}
