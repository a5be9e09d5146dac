package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": "healthy",
		},
	})
}

// PathID parses a positive numeric path parameter. A structurally invalid
// id is a validation error, not a missing resource.
func PathID(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Validation("invalid " + param)
	}
	return id, nil
}

// BindError translates a body binding failure, naming the first offending
// field when the validator reports one.
func BindError(err error, fallback string) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		field := strings.ToLower(verrs[0].Field())
		if verrs[0].Tag() == "required" {
			return errors.Validation(fmt.Sprintf("%s is required", field))
		}
		return errors.Validation(fmt.Sprintf("%s is invalid", field))
	}
	return errors.Validation(fallback)
}
