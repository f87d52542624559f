package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.AppointmentCreated()
	m.AppointmentCreated()
	m.StatusUpdated("Completed")
	m.LookupMissed("patient")
	m.ObserveRequest(http.MethodGet, "/api/appointments", http.StatusOK, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AppointmentsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusUpdates.WithLabelValues("Completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LookupMisses.WithLabelValues("patient")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/appointments", "200")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.AppointmentCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "clinic_appointments_created_total 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AppointmentCreated()
		m.StatusUpdated("Scheduled")
		m.LookupMissed("doctor")
		m.ObserveRequest("GET", "/", 200, time.Millisecond)
	})
}
