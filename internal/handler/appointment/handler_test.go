package appointment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/registry"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/memory"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/appointment"
)

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
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
	return r
}

func makeRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func createBody(start string) map[string]interface{} {
	return map[string]interface{}{
		"date":                "2024-06-10",
		"start_time":          start,
		"patient_id":          "pet-1",
		"client_id":           "client-1",
		"provider_id":         "vet-1",
		"appointment_type_id": "wellness",
	}
}

func TestAppointmentFlow(t *testing.T) {
	r := setupRouter(t)

	code, resp := makeRequest(t, r, http.MethodPost, "/api/v1/appointments", createBody("09:00"))
	require.Equal(t, http.StatusCreated, code, resp.Message)
	assert.Equal(t, "success", resp.Status)

	var created model.Appointment
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "09:40", created.EndTime.String())
	assert.Equal(t, model.AppointmentStatusScheduled, created.Status)

	// Overlapping booking
	code, resp = makeRequest(t, r, http.MethodPost, "/api/v1/appointments", createBody("09:20"))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, appointment.ReasonProviderConflict, resp.Reason)

	// Get appointment
	code, resp = makeRequest(t, r, http.MethodGet, "/api/v1/appointments/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, code)

	// List appointments
	code, resp = makeRequest(t, r, http.MethodGet, "/api/v1/appointments?start_date=2024-06-10&provider_id=vet-1", nil)
	require.Equal(t, http.StatusOK, code)
	var listed []model.Appointment
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	assert.Len(t, listed, 1)

	// Forward transition, then an illegal one back
	code, _ = makeRequest(t, r, http.MethodPatch, "/api/v1/appointments/"+created.ID.String()+"/status",
		map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = makeRequest(t, r, http.MethodPatch, "/api/v1/appointments/"+created.ID.String()+"/status",
		map[string]string{"status": "scheduled"})
	assert.Equal(t, http.StatusConflict, code)

	// Cancel without a body
	code, resp = makeRequest(t, r, http.MethodPost, "/api/v1/appointments/"+created.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var cancelled appointment.CancelResult
	require.NoError(t, json.Unmarshal(resp.Data, &cancelled))
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Appointment.Status)

	// The freed time can be booked again
	code, _ = makeRequest(t, r, http.MethodPost, "/api/v1/appointments", createBody("09:20"))
	assert.Equal(t, http.StatusCreated, code)
}

func TestGetAppointment_Errors(t *testing.T) {
	r := setupRouter(t)

	code, resp := makeRequest(t, r, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", resp.Status)

	code, _ = makeRequest(t, r, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateAppointment_BadInput(t *testing.T) {
	r := setupRouter(t)

	body := createBody("09:00")
	delete(body, "patient_id")
	code, _ := makeRequest(t, r, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusBadRequest, code)

	body = createBody("09:00")
	delete(body, "start_time")
	code, resp := makeRequest(t, r, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "invalid appointment request")

	body = createBody("9am")
	code, _ = makeRequest(t, r, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusBadRequest, code)

	body = createBody("09:00")
	body["provider_id"] = "vet-99"
	code, _ = makeRequest(t, r, http.MethodPost, "/api/v1/appointments", body)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAvailabilityAndSlots(t *testing.T) {
	r := setupRouter(t)

	code, resp := makeRequest(t, r, http.MethodGet,
		"/api/v1/availability?date=2024-06-10&time=09:00&provider_id=vet-1&appointment_type_id=wellness", nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var avail appointment.Availability
	require.NoError(t, json.Unmarshal(resp.Data, &avail))
	assert.True(t, avail.Available)

	code, resp = makeRequest(t, r, http.MethodGet,
		"/api/v1/availability?date=2024-06-16&time=09:00&provider_id=vet-1&appointment_type_id=wellness", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(resp.Data, &avail))
	assert.False(t, avail.Available)
	assert.Equal(t, appointment.ReasonClosed, avail.Reason)

	code, _ = makeRequest(t, r, http.MethodGet, "/api/v1/availability?date=2024-06-10&provider_id=vet-1", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = makeRequest(t, r, http.MethodGet,
		"/api/v1/slots?date=2024-06-10&provider_id=vet-1&appointment_type_id=wellness", nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var slots []model.TimeSlot
	require.NoError(t, json.Unmarshal(resp.Data, &slots))
	require.NotEmpty(t, slots)
	assert.Equal(t, "08:00", slots[0].Time.String())

	code, _ = makeRequest(t, r, http.MethodGet, "/api/v1/slots?date=06/10/2024&provider_id=vet-1&appointment_type_id=wellness", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateRecurringAppointments(t *testing.T) {
	r := setupRouter(t)

	code, resp := makeRequest(t, r, http.MethodPost, "/api/v1/appointments/recurring", map[string]interface{}{
		"template": createBody("10:00"),
		"pattern":  map[string]interface{}{"frequency": "weekly", "count": 3},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)

	var result model.RecurrenceResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Len(t, result.Created, 3)
	assert.Empty(t, result.Skipped)
}

func TestListAppointments_Pagination(t *testing.T) {
	r := setupRouter(t)

	for _, start := range []string{"08:00", "09:00", "10:00"} {
		code, resp := makeRequest(t, r, http.MethodPost, "/api/v1/appointments", createBody(start))
		require.Equal(t, http.StatusCreated, code, resp.Message)
	}

	code, resp := makeRequest(t, r, http.MethodGet, "/api/v1/appointments?start_date=2024-06-10&page=2&page_size=2", nil)
	require.Equal(t, http.StatusOK, code)

	var page struct {
		Data       []model.Appointment `json:"data"`
		Pagination struct {
			Total     int `json:"total"`
			TotalPage int `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "10:00", page.Data[0].StartTime.String())
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPage)

	code, resp = makeRequest(t, r, http.MethodGet, "/api/v1/appointments?start_date=2024-06-10&page=4611686018427387904&page_size=4", nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Empty(t, page.Data)
	assert.Equal(t, 3, page.Pagination.Total)

	code, _ = makeRequest(t, r, http.MethodGet, "/api/v1/appointments?start_date=2024-06-10&status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
