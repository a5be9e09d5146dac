package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/ricardo-ochoa/implaeden-backend/internal/handler"
	"github.com/ricardo-ochoa/implaeden-backend/internal/middleware"
	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	paymentsvc "github.com/ricardo-ochoa/implaeden-backend/internal/service/payment"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/httputil"
)

type Handler struct {
	svc *paymentsvc.Service
}

func NewHandler(svc *paymentsvc.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the payment endpoints under a patient scope.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PUT("/:paymentId", h.Update)
	rg.DELETE("/:paymentId", h.Delete)
	rg.POST("/:paymentId/receipt", h.SendReceipt)
}

func (h *Handler) List(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	payments, err := h.svc.List(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, payments)
}

func (h *Handler) Create(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err, "fecha and monto are required"))
		return
	}

	view, err := h.svc.Create(c.Request.Context(), patientID, middleware.ActorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, view)
}

func (h *Handler) Update(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	paymentID, err := handler.PathID(c, "paymentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request body"))
		return
	}

	view, err := h.svc.Update(c.Request.Context(), patientID, paymentID, middleware.ActorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, view)
}

func (h *Handler) Delete(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	paymentID, err := handler.PathID(c, "paymentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), patientID, paymentID, middleware.ActorID(c)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func (h *Handler) SendReceipt(c *gin.Context) {
	patientID, err := handler.PathID(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	paymentID, err := handler.PathID(c, "paymentId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.SendReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, handler.BindError(err, "a valid recipient email is required"))
		return
	}

	if err := h.svc.SendReceipt(c.Request.Context(), patientID, paymentID, req.To); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"sent": true})
}
