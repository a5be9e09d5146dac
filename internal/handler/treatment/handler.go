package treatment

import (
	"github.com/gin-gonic/gin"

	"github.com/ricardo-ochoa/implaeden-backend/internal/handler"
	"github.com/ricardo-ochoa/implaeden-backend/internal/middleware"
	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	treatmentsvc "github.com/ricardo-ochoa/implaeden-backend/internal/service/treatment"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/httputil"
)

type Handler struct {
	svc *treatmentsvc.Service
}

func NewHandler(svc *treatmentsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the treatment endpoints under a patient scope.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PATCH("/:treatmentId", h.Patch)
	rg.PUT("/:treatmentId/status", h.SetStatus)
	rg.PUT("/:treatmentId/cost", h.SetCost)
	rg.DELETE("/:treatmentId", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	treatments, err := h.svc.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, treatments)
}

// Create accepts either a single treatment body or a services array. Both
// shapes become one batch with a fresh group.
func (h *Handler) Create(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var body struct {
		model.CreateTreatmentItem
		Services []model.CreateTreatmentItem `json:"services"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	items := body.Services
	if len(items) == 0 {
		items = []model.CreateTreatmentItem{body.CreateTreatmentItem}
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), patientID, middleware.ActorID(c), items)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, batch)
}

func (h *Handler) Patch(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	treatmentID, err := handler.PathID(c, "treatmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var patch model.TreatmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	if err := h.svc.Patch(c.Request.Context(), patientID, treatmentID, middleware.ActorID(c), &patch); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"treatment_id": treatmentID})
}

func (h *Handler) SetStatus(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	treatmentID, err := handler.PathID(c, "treatmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err, "status is required"))
		return
	}

	if err := h.svc.SetStatus(c.Request.Context(), patientID, treatmentID, req.Status); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"treatment_id": treatmentID, "status": req.Status})
}

func (h *Handler) SetCost(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	treatmentID, err := handler.PathID(c, "treatmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SetCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	cost, err := h.svc.SetCost(c.Request.Context(), patientID, treatmentID, middleware.ActorID(c), req.TotalCost)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"treatment_id": treatmentID, "total_cost": cost})
}

func (h *Handler) Delete(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	treatmentID, err := handler.PathID(c, "treatmentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), patientID, treatmentID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}
