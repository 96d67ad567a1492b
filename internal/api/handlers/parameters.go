package handlers

import (
	"net/http"

	"site-ems/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ParameterHandler describes the adjustable run parameters
type ParameterHandler struct{}

func NewParameterHandler() *ParameterHandler {
	return &ParameterHandler{}
}

// ListParameters handles GET /api/v1/parameters
func (h *ParameterHandler) ListParameters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"parameters": models.Parameters()})
}
