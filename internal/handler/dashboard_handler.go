package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/service"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

type profileService interface {
	Get(ctx context.Context, teacherID string) (*models.TeacherProfile, error)
	Update(ctx context.Context, teacherID string, req dto.UpdateProfileRequest) (*models.TeacherProfile, error)
}

type walletService interface {
	Summary(ctx context.Context, teacherID string) (*dto.WalletSummary, error)
	Withdraw(ctx context.Context, teacherID string, req models.WithdrawalRequest) (*dto.WithdrawalResult, error)
	Statement(ctx context.Context, teacherID, format string) (*service.Statement, error)
}

// DashboardHandler serves the teacher dashboard.
type DashboardHandler struct {
	profiles profileService
	wallets  walletService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(profiles profileService, wallets walletService) *DashboardHandler {
	return &DashboardHandler{profiles: profiles, wallets: wallets}
}

// Profile godoc
// @Summary Teacher profile for editing
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/profile [get]
func (h *DashboardHandler) Profile(c *gin.Context) {
	teacherID, ok := teacherFromContext(c)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateProfile godoc
// @Summary Save the teacher profile
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/profile [put]
func (h *DashboardHandler) UpdateProfile(c *gin.Context) {
	teacherID, ok := teacherFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Wallet godoc
// @Summary Wallet balances and ledger
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/wallet [get]
func (h *DashboardHandler) Wallet(c *gin.Context) {
	teacherID, ok := teacherFromContext(c)
	if !ok {
		return
	}
	summary, err := h.wallets.Summary(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Withdraw godoc
// @Summary Request a withdrawal
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body models.WithdrawalRequest true "Amount and method"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /dashboard/wallet/withdrawals [post]
func (h *DashboardHandler) Withdraw(c *gin.Context) {
	teacherID, ok := teacherFromContext(c)
	if !ok {
		return
	}
	var req models.WithdrawalRequest
	if !bindJSON(c, &req, "invalid withdrawal payload") {
		return
	}
	result, err := h.wallets.Withdraw(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Statement godoc
// @Summary Download the wallet statement
// @Tags Dashboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /dashboard/wallet/statement [get]
func (h *DashboardHandler) Statement(c *gin.Context) {
	teacherID, ok := teacherFromContext(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	statement, err := h.wallets.Statement(c.Request.Context(), teacherID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, statement.Filename, statement.ContentType, statement.Body)
}

func teacherFromContext(c *gin.Context) (string, bool) {
	claims, ok := requireClaims(c)
	if !ok {
		return "", false
	}
	if !claims.IsTeacher() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "teacher account required"))
		return "", false
	}
	return claims.TeacherID, true
}
