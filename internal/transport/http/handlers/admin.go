package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Admin godoc
// @Summary Admin access check
// @Description Reachable by the admin role only.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin [get]
func Admin(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "you admin!"})
}
