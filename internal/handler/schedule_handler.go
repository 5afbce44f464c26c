package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

type scheduleService interface {
	Overview(ctx context.Context, principal *models.JWTClaims) (*dto.ScheduleOverview, error)
	CancellationPolicy(ctx context.Context, classID string, principal *models.JWTClaims) (*dto.CancellationPolicy, error)
	Cancel(ctx context.Context, classID string, principal *models.JWTClaims) (*models.ScheduledClass, error)
	Reschedule(ctx context.Context, classID string, principal *models.JWTClaims, req models.RescheduleRequest) (*models.ScheduledClass, error)
}

// ScheduleHandler manages the principal's scheduled classes.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Overview godoc
// @Summary My classes
// @Description Upcoming, completed and cancelled classes of the signed-in user
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Overview(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil, map[string]interface{}{
		"upcoming_count":  len(overview.Upcoming),
		"completed_count": len(overview.Completed),
	})
}

// CancellationPolicy godoc
// @Summary Cancellation fee policy for a class
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/classes/{id}/cancellation [get]
func (h *ScheduleHandler) CancellationPolicy(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	policy, err := h.service.CancellationPolicy(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy, nil)
}

// Cancel godoc
// @Summary Cancel an upcoming class
// @Tags Schedule
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/classes/{id}/cancel [post]
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	class, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Reschedule godoc
// @Summary Move an upcoming class
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body models.RescheduleRequest true "New date and time"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/classes/{id}/reschedule [post]
func (h *ScheduleHandler) Reschedule(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req models.RescheduleRequest
	if !bindJSON(c, &req, "invalid reschedule payload") {
		return
	}
	class, err := h.service.Reschedule(c.Request.Context(), c.Param("id"), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}
