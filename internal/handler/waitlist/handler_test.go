package waitlist

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/waitlist"
)

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(waitlist.NewManager(catalog.Default())).RegisterRoutes(r.Group("/api/v1"))
	return r
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

type entryResponse struct {
	Status string              `json:"status"`
	Data   model.WaitlistEntry `json:"data"`
}

type listResponse struct {
	Status string                `json:"status"`
	Data   []model.WaitlistEntry `json:"data"`
}

func TestWaitlistFlow(t *testing.T) {
	r := setup()

	w := do(r, http.MethodPost, "/api/v1/waitlist", map[string]interface{}{
		"patient_id":          "pet-1",
		"client_id":           "client-1",
		"appointment_type_id": "dental",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var routine entryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &routine))
	assert.Equal(t, model.WaitlistStatusWaiting, routine.Data.Status)

	w = do(r, http.MethodPost, "/api/v1/waitlist", map[string]interface{}{
		"patient_id":          "pet-2",
		"client_id":           "client-2",
		"appointment_type_id": "dental",
		"priority":            "urgent",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var urgent entryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &urgent))

	// Higher priority entries come first
	w = do(r, http.MethodGet, "/api/v1/waitlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	assert.Equal(t, urgent.Data.ID, list.Data[0].ID)
	assert.Equal(t, routine.Data.ID, list.Data[1].ID)

	apptID := uuid.New()
	w = do(r, http.MethodPost, "/api/v1/waitlist/"+urgent.Data.ID.String()+"/booked",
		map[string]string{"appointment_id": apptID.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var booked entryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	assert.Equal(t, model.WaitlistStatusBooked, booked.Data.Status)
	require.NotNil(t, booked.Data.AppointmentID)
	assert.Equal(t, apptID, *booked.Data.AppointmentID)

	w = do(r, http.MethodGet, "/api/v1/waitlist?status=waiting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, routine.Data.ID, list.Data[0].ID)

	w = do(r, http.MethodDelete, "/api/v1/waitlist/"+routine.Data.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/waitlist/"+routine.Data.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWaitlist_BadRequests(t *testing.T) {
	r := setup()

	w := do(r, http.MethodPost, "/api/v1/waitlist", map[string]interface{}{
		"patient_id":          "pet-1",
		"client_id":           "client-1",
		"appointment_type_id": "dental",
		"priority":            "whenever",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/waitlist?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/waitlist/"+uuid.NewString()+"/booked", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/waitlist/"+uuid.NewString()+"/booked",
		map[string]string{"appointment_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
