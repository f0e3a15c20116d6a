package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/handler"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/appointment"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", h.CheckAvailability)
	rg.GET("/slots", h.GetAvailableSlots)

	appointments := rg.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.POST("/recurring", h.CreateRecurringAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.POST("/:id/reschedule", h.Reschedule)
		appointments.POST("/:id/cancel", h.Cancel)
		appointments.POST("/:id/confirmation", h.SendConfirmation)
	}
}

// CheckAvailability answers whether one candidate interval is free.
// Query: date, time, provider_id, and either duration or appointment_type_id.
func (h *Handler) CheckAvailability(c *gin.Context) {
	date, err := handler.DateQuery(c, "date", true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	at, err := handler.ClockQuery(c, "time")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	duration, err := handler.IntQuery(c, "duration", 0)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	q := appointment.AvailabilityQuery{
		Date:              date,
		Time:              at,
		Duration:          duration,
		ProviderID:        c.Query("provider_id"),
		AppointmentTypeID: c.Query("appointment_type_id"),
	}
	if room := c.Query("room_id"); room != "" {
		q.RoomID = &room
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), q)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) GetAvailableSlots(c *gin.Context) {
	date, err := handler.DateQuery(c, "date", true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	duration, err := handler.IntQuery(c, "duration", 0)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), appointment.SlotQuery{
		Date:              date,
		ProviderID:        c.Query("provider_id"),
		AppointmentTypeID: c.Query("appointment_type_id"),
		Duration:          duration,
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

// ListAppointments returns appointments between start_date and end_date
// inclusive. end_date defaults to start_date.
func (h *Handler) ListAppointments(c *gin.Context) {
	start, err := handler.DateQuery(c, "start_date", true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	end, err := handler.DateQuery(c, "end_date", false)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if end.IsZero() {
		end = start
	}
	includeCancelled, err := handler.BoolQuery(c, "include_cancelled")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	page, size, paged, err := handler.PageQuery(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	status := model.AppointmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		httputil.RespondWithError(c, errors.NewBadRequest("invalid status", nil))
		return
	}

	filters := &model.AppointmentFilters{
		ProviderID:       c.Query("provider_id"),
		RoomID:           c.Query("room_id"),
		PatientID:        c.Query("patient_id"),
		ClientID:         c.Query("client_id"),
		Status:           status,
		IncludeCancelled: includeCancelled,
	}

	appts, err := h.service.GetAppointments(c.Request.Context(), start, end, filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if paged {
		httputil.RespondWithPagination(c, httputil.Page(appts, page, size), page, size, len(appts))
		return
	}
	httputil.RespondWithSuccess(c, appts)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.UpdateStatusRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.UpdateAppointmentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.RescheduleRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.RescheduleAppointment(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

// Cancel accepts an optional body carrying the cancellation reason.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := handler.BindJSON(c, &req); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	result, err := h.service.CancelAppointment(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) SendConfirmation(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.ConfirmationRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appt, err := h.service.SendConfirmation(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) CreateRecurringAppointments(c *gin.Context) {
	var req model.RecurringAppointmentRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.CreateRecurringAppointments(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, result)
}
