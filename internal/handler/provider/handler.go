package provider

import (
	"github.com/gin-gonic/gin"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/handler"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/appointment"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	providers := rg.Group("/providers")
	{
		providers.GET("/:id/schedule", h.GetSchedule)
		providers.POST("/:id/blocks", h.BlockTime)
	}
}

// GetSchedule returns the provider's day for ?date=YYYY-MM-DD.
func (h *Handler) GetSchedule(c *gin.Context) {
	date, err := handler.DateQuery(c, "date", true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	schedule, err := h.service.GetProviderSchedule(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, schedule)
}

func (h *Handler) BlockTime(c *gin.Context) {
	var req model.BlockTimeRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	block, err := h.service.BlockTime(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, block)
}
