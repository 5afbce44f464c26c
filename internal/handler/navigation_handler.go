package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

type navigationService interface {
	Routes(principal *models.JWTClaims) []models.Route
}

// NavigationHandler lists client routes for the optional principal.
type NavigationHandler struct {
	service navigationService
}

// NewNavigationHandler constructs a NavigationHandler.
func NewNavigationHandler(service navigationService) *NavigationHandler {
	return &NavigationHandler{service: service}
}

// Routes godoc
// @Summary Visible navigation entries
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /navigation [get]
func (h *NavigationHandler) Routes(c *gin.Context) {
	claims := claimsFromContext(c)
	meta := map[string]interface{}{"authenticated": claims != nil}
	response.JSON(c, http.StatusOK, h.service.Routes(claims), nil, meta)
}
