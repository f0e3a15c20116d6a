package waitlist

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/handler"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/waitlist"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/httputil"
)

type Handler struct {
	manager *waitlist.Manager
}

func NewHandler(manager *waitlist.Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/waitlist")
	{
		entries.POST("", h.Add)
		entries.GET("", h.List)
		entries.GET("/:id", h.Get)
		entries.DELETE("/:id", h.Remove)
		entries.POST("/:id/booked", h.MarkBooked)
	}
}

func (h *Handler) Add(c *gin.Context) {
	var req model.AddToWaitlistRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	entry, err := h.manager.Add(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, entry)
}

// List returns entries in queue order, optionally filtered by ?status=.
func (h *Handler) List(c *gin.Context) {
	entries, err := h.manager.List(c.Request.Context(), model.WaitlistStatus(c.Query("status")))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	entry, err := h.manager.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entry)
}

func (h *Handler) Remove(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.manager.Remove(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}

func (h *Handler) MarkBooked(c *gin.Context) {
	id, err := handler.UUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	var req model.MarkBookedRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if req.AppointmentID == uuid.Nil {
		httputil.RespondWithError(c, errors.NewBadRequest("appointment_id is required", nil))
		return
	}

	entry, err := h.manager.MarkBooked(c.Request.Context(), id, req.AppointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entry)
}
