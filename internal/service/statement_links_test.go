package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/seed"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/storage"
)

func newStatementLinksFixture(t *testing.T) *StatementLinks {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	return NewStatementLinks(newWalletFixture(t), disk, storage.NewLinkSigner("secret", time.Hour), "/api/v1/", nil)
}

func TestStatementLinksShareAndOpen(t *testing.T) {
	links := newStatementLinksFixture(t)

	link, err := links.Share(context.Background(), seed.DemoTeacherID, "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "/api/v1/files/"))
	assert.Equal(t, "csv", link.Format)

	token := strings.TrimPrefix(link.URL, "/api/v1/files/")
	file, err := links.Open(token)
	require.NoError(t, err)
	defer file.File.Close()

	body, err := io.ReadAll(file.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Saldo disponível")
	assert.Equal(t, link.Filename, file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")
}

func TestStatementLinksRejectForgedToken(t *testing.T) {
	links := newStatementLinksFixture(t)

	_, err := links.Open("forged.token.value.sig")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestStatementLinksUnknownFormat(t *testing.T) {
	links := newStatementLinksFixture(t)

	_, err := links.Share(context.Background(), seed.DemoTeacherID, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
