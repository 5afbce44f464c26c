package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/service"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

type fakeStatementLinks struct {
	path   string
	format string
}

func (f *fakeStatementLinks) Share(_ context.Context, _ string, format string) (*dto.StatementLink, error) {
	f.format = format
	return &dto.StatementLink{URL: "/api/v1/files/token", Format: format}, nil
}

func (f *fakeStatementLinks) Open(token string) (*service.StatementFile, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	return &service.StatementFile{File: file, Filename: "extrato.csv", ContentType: "text/csv"}, nil
}

func TestStatementShareRequiresTeacher(t *testing.T) {
	links := &fakeStatementLinks{}
	handler := NewStatementHandler(links)

	c, rec := newTestContext(http.MethodPost, "/dashboard/wallet/statement/links", nil, studentClaims)
	handler.Share(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/dashboard/wallet/statement/links?format=pdf", nil, teacherClaims)
	handler.Share(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "pdf", links.format)
}

func TestStatementDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extrato.csv")
	require.NoError(t, os.WriteFile(path, []byte("Data,Valor\n"), 0o644))
	handler := NewStatementHandler(&fakeStatementLinks{path: path})

	c, rec := newTestContext(http.MethodGet, "/files/good", nil, nil)
	c.AddParam("token", "good")
	handler.Download(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Data,Valor\n", rec.Body.String())

	c, rec = newTestContext(http.MethodGet, "/files/bad", nil, nil)
	c.AddParam("token", "bad")
	handler.Download(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
