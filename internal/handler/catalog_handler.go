package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

type catalogService interface {
	List(ctx context.Context, query models.TeacherQuery) (*dto.TeacherListResult, error)
	Get(ctx context.Context, id string) (*models.Teacher, error)
	Subjects(ctx context.Context, category string) ([]models.Subject, error)
	Categories() []string
}

// CatalogHandler serves the public teacher catalog.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// List godoc
// @Summary Browse teachers
// @Description Filter by free text, category and subjects; sort by rating, price or reviews
// @Tags Catalog
// @Produce json
// @Param q query string false "Text matched against name and subjects"
// @Param category query string false "Subject category (Todas, Exatas, Humanas, Negócios)"
// @Param subjects query string false "Comma separated subject names"
// @Param sort query string false "rating | price-low | price-high | reviews"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *CatalogHandler) List(c *gin.Context) {
	query := models.TeacherQuery{
		Search:   strings.TrimSpace(c.Query("q")),
		Category: strings.TrimSpace(c.Query("category")),
		Subjects: splitList(c.QueryArray("subjects")),
		SortBy:   strings.TrimSpace(c.DefaultQuery("sort", models.SortByRating)),
	}

	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := metaWithCacheHit(c, result.Meta.CacheHit)
	meta["count"] = result.Meta.Count
	meta["category"] = result.Meta.Category
	meta["visible_subjects"] = result.Meta.VisibleSubjects
	meta["selected_subjects"] = result.Meta.SelectedSubjects
	meta["sort_by"] = result.Meta.SortBy
	response.JSON(c, http.StatusOK, result.Teachers, nil, meta)
}

// Get godoc
// @Summary Teacher profile
// @Tags Catalog
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	teacher, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Subjects godoc
// @Summary List subjects
// @Tags Catalog
// @Produce json
// @Param category query string false "Restrict to one category"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *CatalogHandler) Subjects(c *gin.Context) {
	subjects, err := h.service.Subjects(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Categories godoc
// @Summary List subject categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Categories(), nil)
}

// splitList accepts both repeated and comma separated query values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
