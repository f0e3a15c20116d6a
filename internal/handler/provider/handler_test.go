package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/registry"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/memory"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/appointment"
)

func setup(t *testing.T) (*gin.Engine, *appointment.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := catalog.Default()
	providers, rooms := registry.DefaultResources()
	reg, err := registry.New(cat, providers, rooms)
	require.NoError(t, err)

	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	svc := appointment.NewService(memory.NewAppointmentStore(), cat, reg,
		appointment.WithClock(func() time.Time { return now }))

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBlockTimeAndSchedule(t *testing.T) {
	r, svc := setup(t)

	w := do(r, http.MethodPost, "/api/v1/providers/vet-1/blocks", map[string]string{
		"date":       "2024-06-10",
		"start_time": "14:00",
		"end_time":   "15:00",
		"reason":     "CE course",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The block makes the provider unavailable for overlapping requests
	avail, err := svc.CheckAvailability(context.Background(), appointment.AvailabilityQuery{
		Date:              model.NewDate(2024, time.June, 10),
		Time:              model.NewClockTime(14, 30),
		ProviderID:        "vet-1",
		AppointmentTypeID: "wellness",
	})
	require.NoError(t, err)
	assert.Equal(t, appointment.ReasonBlockedTime, avail.Reason)

	w = do(r, http.MethodGet, "/api/v1/providers/vet-1/schedule?date=2024-06-10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Status string                 `json:"status"`
		Data   model.ProviderSchedule `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data.Blocked, 1)
	assert.Equal(t, "CE course", resp.Data.Blocked[0].Reason)
	require.NotNil(t, resp.Data.Hours)
	assert.Equal(t, "08:00", resp.Data.Hours.Open.String())
}

func TestSchedule_Errors(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodGet, "/api/v1/providers/vet-1/schedule", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/providers/nobody/schedule?date=2024-06-10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/api/v1/providers/vet-1/blocks", map[string]string{
		"date":       "2024-06-10",
		"start_time": "15:00",
		"end_time":   "14:00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
