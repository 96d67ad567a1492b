package handlers

import (
	"errors"
	"net/http"

	"site-ems/internal/api/models"
	"site-ems/internal/model"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// writeRunError maps run failures: invalid parameters are the caller's fault,
// everything else is ours.
func writeRunError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrInvalidInput) {
		writeError(c, http.StatusBadRequest, "INVALID_INPUT", err)
		return
	}
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, "SIMULATION_ERROR", err)
}
