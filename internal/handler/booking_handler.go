package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

type bookingService interface {
	Availability(ctx context.Context, teacherID, date string, duration int) (*dto.TeacherAvailability, error)
	CreateDraft(ctx context.Context, teacherID, studentID, studentName string) (*dto.BookingDraftView, error)
	GetDraft(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error)
	UpdateDraft(ctx context.Context, draftID, studentID string, patch models.BookingDraftPatch) (*dto.BookingDraftView, error)
	Next(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error)
	Back(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error)
	DiscardDraft(ctx context.Context, draftID, studentID string) error
	Submit(ctx context.Context, draftID, studentID string) (*dto.BookingConfirmation, error)
}

// BookingHandler exposes the booking wizard.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Availability godoc
// @Summary Bookable dates and times
// @Tags Booking
// @Produce json
// @Param id path string true "Teacher ID"
// @Param date query string false "Date (YYYY-MM-DD) to list free slots for"
// @Param duration query int false "Lesson length in minutes"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *BookingHandler) Availability(c *gin.Context) {
	duration := 0
	if raw := strings.TrimSpace(c.Query("duration")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration must be a number of minutes"))
			return
		}
		duration = parsed
	}

	availability, err := h.service.Availability(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("date")), duration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// CreateDraft godoc
// @Summary Open the booking wizard
// @Tags Booking
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 201 {object} response.Envelope
// @Router /teachers/{id}/bookings/drafts [post]
func (h *BookingHandler) CreateDraft(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	draft, err := h.service.CreateDraft(c.Request.Context(), c.Param("id"), claims.UserID, claims.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// GetDraft godoc
// @Summary Booking draft
// @Tags Booking
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/drafts/{draftId} [get]
func (h *BookingHandler) GetDraft(c *gin.Context) {
	h.draftStep(c, h.service.GetDraft)
}

// UpdateDraft godoc
// @Summary Edit the fields of the current step
// @Tags Booking
// @Accept json
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param payload body models.BookingDraftPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/drafts/{draftId} [patch]
func (h *BookingHandler) UpdateDraft(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var patch models.BookingDraftPatch
	if !bindJSON(c, &patch, "invalid draft payload") {
		return
	}
	draft, err := h.service.UpdateDraft(c.Request.Context(), c.Param("draftId"), claims.UserID, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}

// Next godoc
// @Summary Advance the wizard
// @Tags Booking
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/drafts/{draftId}/next [post]
func (h *BookingHandler) Next(c *gin.Context) {
	h.draftStep(c, h.service.Next)
}

// Back godoc
// @Summary Go back one step
// @Tags Booking
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} response.Envelope
// @Router /bookings/drafts/{draftId}/back [post]
func (h *BookingHandler) Back(c *gin.Context) {
	h.draftStep(c, h.service.Back)
}

// DiscardDraft godoc
// @Summary Close the wizard without booking
// @Tags Booking
// @Param draftId path string true "Draft ID"
// @Success 204
// @Router /bookings/drafts/{draftId} [delete]
func (h *BookingHandler) DiscardDraft(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if err := h.service.DiscardDraft(c.Request.Context(), c.Param("draftId"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Confirm the booking
// @Description Creates the scheduled class once per draft; repeating the call returns the same class
// @Tags Booking
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/drafts/{draftId}/submit [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	confirmation, err := h.service.Submit(c.Request.Context(), c.Param("draftId"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusCreated
	if confirmation.Replay {
		status = http.StatusOK
	}
	response.JSON(c, status, confirmation, nil)
}

func (h *BookingHandler) draftStep(c *gin.Context, step func(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error)) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	draft, err := step(c.Request.Context(), c.Param("draftId"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, draft, nil)
}
