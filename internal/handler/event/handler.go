package event

import (
	"github.com/gin-gonic/gin"

	"github.com/ricardo-ochoa/implaeden-backend/internal/handler"
	"github.com/ricardo-ochoa/implaeden-backend/internal/middleware"
	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	eventsvc "github.com/ricardo-ochoa/implaeden-backend/internal/service/event"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/httputil"
)

type Handler struct {
	svc *eventsvc.Service
}

func NewHandler(svc *eventsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient timeline endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Append)
	rg.PUT("/:eventId", h.UpdateNote)
	rg.DELETE("/:eventId", h.DeleteNote)
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var filter model.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid query parameters"))
		return
	}

	page, err := h.svc.List(c.Request.Context(), patientID, &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, page)
}

func (h *Handler) Append(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var body struct {
		PatientServiceID      *int64      `json:"patient_service_id"`
		PatientServiceGroupID *int64      `json:"patient_service_group_id"`
		EventType             string      `json:"event_type"`
		Message               string      `json:"message"`
		Meta                  interface{} `json:"meta"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	entry, err := h.svc.Append(c.Request.Context(), &model.AppendEvent{
		PatientID:             patientID,
		PatientServiceID:      body.PatientServiceID,
		PatientServiceGroupID: body.PatientServiceGroupID,
		EventType:             body.EventType,
		Message:               body.Message,
		Meta:                  body.Meta,
		CreatedBy:             middleware.ActorID(c),
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, entry)
}

func (h *Handler) UpdateNote(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	eventID, err := handler.PathID(c, "eventId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err, "message is required"))
		return
	}

	if err := h.svc.UpdateNote(c.Request.Context(), patientID, eventID, req.Message, req.Meta); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"event_id": eventID})
}

func (h *Handler) DeleteNote(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	eventID, err := handler.PathID(c, "eventId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.DeleteNote(c.Request.Context(), patientID, eventID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
