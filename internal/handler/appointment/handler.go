package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/ricardo-ochoa/implaeden-backend/internal/handler"
	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	appointmentsvc "github.com/ricardo-ochoa/implaeden-backend/internal/service/appointment"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/httputil"
)

type Handler struct {
	svc *appointmentsvc.Service
}

func NewHandler(svc *appointmentsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the appointment endpoints under a patient scope.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:appointmentId", h.Get)
	rg.POST("", h.Create)
	rg.PUT("/:appointmentId", h.Update)
	rg.DELETE("/:appointmentId", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, err := h.svc.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) Get(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	appointmentID, err := handler.PathID(c, "appointmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	a, err := h.svc.Get(c.Request.Context(), patientID, appointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

func (h *Handler) Create(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SaveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err, "appointment_at and service_id are required"))
		return
	}

	a, err := h.svc.Create(c.Request.Context(), patientID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, a)
}

func (h *Handler) Update(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	appointmentID, err := handler.PathID(c, "appointmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SaveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err, "appointment_at and service_id are required"))
		return
	}

	a, err := h.svc.Update(c.Request.Context(), patientID, appointmentID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

func (h *Handler) Delete(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	appointmentID, err := handler.PathID(c, "appointmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), patientID, appointmentID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
