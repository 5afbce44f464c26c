package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/service"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

type statementLinker interface {
	Share(ctx context.Context, teacherID, format string) (*dto.StatementLink, error)
	Open(token string) (*service.StatementFile, error)
}

// StatementHandler issues and serves signed statement downloads.
type StatementHandler struct {
	links statementLinker
}

// NewStatementHandler constructs a StatementHandler.
func NewStatementHandler(links statementLinker) *StatementHandler {
	return &StatementHandler{links: links}
}

// Share godoc
// @Summary Create a shareable statement link
// @Tags Dashboard
// @Produce json
// @Param format query string false "csv (default) or pdf"
// @Success 201 {object} response.Envelope
// @Router /dashboard/wallet/statement/links [post]
func (h *StatementHandler) Share(c *gin.Context) {
	teacherID, ok := teacherFromContext(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	link, err := h.links.Share(c.Request.Context(), teacherID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Download a shared statement
// @Tags Dashboard
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *StatementHandler) Download(c *gin.Context) {
	file, err := h.links.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close() //nolint:errcheck

	info, err := file.File.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+file.Filename+"\"")
	c.DataFromReader(http.StatusOK, info.Size(), file.ContentType, file.File, nil)
}
