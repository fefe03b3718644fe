package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/asset"
	"github.com/communityhub/server/pkg/logger"
)

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) PresignedPutURL(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return "https://store.local/put/" + key, nil
}

func (s *fakeStorage) PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://store.local/get/" + key, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func newFileService() (FileService, *fakeStorage) {
	store := &fakeStorage{}
	return NewFileService(repositories.NewInMemoryAssetRepo(), store, logger.InitForTests().App), store
}

func TestCreateFileReturnsUploadURL(t *testing.T) {
	svc, _ := newFileService()
	out, err := svc.Create(context.Background(), asset.CreateInput{Filename: "poster.png", MimeType: "image/png"}, uuid.NewString())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Asset.IsUploaded {
		t.Fatalf("asset must start unconfirmed")
	}
	if !strings.HasPrefix(out.UploadURL, "https://store.local/put/") {
		t.Fatalf("unexpected upload url %q", out.UploadURL)
	}
	if !strings.HasSuffix(out.UploadURL, ".png") {
		t.Fatalf("storage key must keep the extension, got %q", out.UploadURL)
	}
}

func TestDownloadURLRequiresUploadAndAccess(t *testing.T) {
	svc, _ := newFileService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	out, err := svc.Create(ctx, asset.CreateInput{Filename: "notes.pdf", MimeType: "application/pdf"}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.DownloadURL(ctx, out.Asset.ID, ownerID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unconfirmed upload must not be downloadable, got %v", err)
	}
	if _, err := svc.MarkUploaded(ctx, out.Asset.ID, ownerID); err != nil {
		t.Fatalf("mark uploaded: %v", err)
	}
	if _, err := svc.DownloadURL(ctx, out.Asset.ID, ownerID); err != nil {
		t.Fatalf("owner download: %v", err)
	}
	if _, err := svc.DownloadURL(ctx, out.Asset.ID, uuid.NewString()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("private file must reject strangers, got %v", err)
	}
}

func TestPublicFileDownloadableByAnyone(t *testing.T) {
	svc, _ := newFileService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	out, err := svc.Create(ctx, asset.CreateInput{Filename: "logo.svg", MimeType: "image/svg+xml", IsPublic: true}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.MarkUploaded(ctx, out.Asset.ID, ownerID); err != nil {
		t.Fatalf("mark uploaded: %v", err)
	}
	if _, err := svc.DownloadURL(ctx, out.Asset.ID, uuid.NewString()); err != nil {
		t.Fatalf("public file download: %v", err)
	}
}

func TestDeleteRemovesRowThenObject(t *testing.T) {
	svc, store := newFileService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	out, err := svc.Create(ctx, asset.CreateInput{Filename: "old.txt", MimeType: "text/plain"}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, out.Asset.ID, uuid.NewString()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("stranger delete must be rejected, got %v", err)
	}
	if err := svc.Delete(ctx, out.Asset.ID, ownerID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected object removal, got %v", store.deleted)
	}
	if _, err := svc.DownloadURL(ctx, out.Asset.ID, ownerID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("deleted asset must be gone, got %v", err)
	}
}
