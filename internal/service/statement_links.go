package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/export"
	"github.com/noah-isme/discipulus-api/pkg/storage"
)

type statementRenderer interface {
	Statement(ctx context.Context, teacherID, format string) (*Statement, error)
}

type documentStore interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Sweep(ttl time.Duration) ([]string, error)
}

// StatementFile is an opened stored statement.
type StatementFile struct {
	File        *os.File
	Filename    string
	ContentType string
}

// StatementLinks stores rendered wallet statements and hands out expiring
// signed download links for them.
type StatementLinks struct {
	wallets statementRenderer
	files   documentStore
	signer  *storage.LinkSigner
	prefix  string
	logger  *zap.Logger
}

// NewStatementLinks constructs a StatementLinks service. prefix is the API
// prefix the download route is mounted under.
func NewStatementLinks(wallets statementRenderer, files documentStore, signer *storage.LinkSigner, prefix string, logger *zap.Logger) *StatementLinks {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &StatementLinks{wallets: wallets, files: files, signer: signer, prefix: prefix, logger: logger}
}

// Share renders the statement, stores it and returns a signed link.
func (s *StatementLinks) Share(ctx context.Context, teacherID, format string) (*dto.StatementLink, error) {
	statement, err := s.wallets.Statement(ctx, teacherID, format)
	if err != nil {
		return nil, err
	}
	name, err := s.files.Save(path.Join("statements", teacherID, statement.Filename), statement.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store statement")
	}
	token, expiresAt, err := s.signer.Sign(teacherID, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign statement link")
	}
	s.logger.Info("statement link issued", zap.String("teacher_id", teacherID), zap.String("file", name))
	return &dto.StatementLink{
		URL:       fmt.Sprintf("%s/files/%s", s.prefix, token),
		Filename:  statement.Filename,
		Format:    strings.ToLower(format),
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a download token into the stored file.
func (s *StatementLinks) Open(token string) (*StatementFile, error) {
	_, name, _, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrLinkExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "download link expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}
	file, err := s.files.Open(name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "statement no longer available")
	}
	base := path.Base(name)
	contentType := "application/octet-stream"
	if exporter, err := export.ForFormat(strings.TrimPrefix(path.Ext(base), ".")); err == nil {
		contentType = exporter.ContentType()
	}
	return &StatementFile{File: file, Filename: base, ContentType: contentType}, nil
}

// Sweep deletes stored statements whose links can no longer be valid.
func (s *StatementLinks) Sweep(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	removed, err := s.files.Sweep(s.signer.TTL())
	if err != nil {
		return 0, err
	}
	return len(removed), nil
}
