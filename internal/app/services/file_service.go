package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/asset"
	"github.com/communityhub/server/pkg/storage"
)

const presignExpiry = time.Hour

// FileService registers file assets and brokers presigned URLs for direct
// upload and download against the object store.
type FileService interface {
	Create(ctx context.Context, in asset.CreateInput, callerID string) (*asset.CreateOutput, error)
	MarkUploaded(ctx context.Context, assetID, callerID string) (*asset.Asset, error)
	DownloadURL(ctx context.Context, assetID, callerID string) (string, error)
	Delete(ctx context.Context, assetID, callerID string) error
	ListMine(ctx context.Context, callerID string) ([]asset.Asset, error)
}

type fileService struct {
	assets repositories.AssetRepository
	store  storage.Service
	log    *slog.Logger
}

func NewFileService(assets repositories.AssetRepository, store storage.Service, log *slog.Logger) FileService {
	return &fileService{assets: assets, store: store, log: log}
}

func (s *fileService) Create(ctx context.Context, in asset.CreateInput, callerID string) (*asset.CreateOutput, error) {
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return nil, apperr.BadRequest("filename is required")
	}
	mimeType := strings.TrimSpace(in.MimeType)
	if mimeType == "" {
		return nil, apperr.BadRequest("mime type is required")
	}

	id := uuid.NewString()
	a := &asset.Asset{
		ID:         id,
		Filename:   filename,
		MimeType:   mimeType,
		StorageKey: buildStorageKey(callerID, id, filename),
		UserID:     callerID,
		IsPublic:   in.IsPublic,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.assets.Create(ctx, a); err != nil {
		return nil, apperr.Internal("create asset", err)
	}

	uploadURL, err := s.store.PresignedPutURL(ctx, a.StorageKey, a.MimeType, presignExpiry)
	if err != nil {
		return nil, apperr.Internal("presign upload url", err)
	}
	return &asset.CreateOutput{Asset: a, UploadURL: uploadURL}, nil
}

func (s *fileService) MarkUploaded(ctx context.Context, assetID, callerID string) (*asset.Asset, error) {
	a, err := s.loadOwned(ctx, assetID, callerID)
	if err != nil {
		return nil, err
	}
	if a.IsUploaded {
		return a, nil
	}
	a.IsUploaded = true
	if err := s.assets.Update(ctx, a); err != nil {
		return nil, apperr.Internal("mark asset uploaded", err)
	}
	return a, nil
}

func (s *fileService) DownloadURL(ctx context.Context, assetID, callerID string) (string, error) {
	a, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	if !a.IsPublic && a.UserID != callerID {
		return "", apperr.Forbidden("you do not have access to this file")
	}
	if !a.IsUploaded {
		return "", apperr.NotFound("file not found")
	}
	url, err := s.store.PresignedGetURL(ctx, a.StorageKey, presignExpiry)
	if err != nil {
		return "", apperr.Internal("presign download url", err)
	}
	return url, nil
}

// Delete removes the metadata row first; object removal is best-effort so a
// storage hiccup never resurrects a deleted asset.
func (s *fileService) Delete(ctx context.Context, assetID, callerID string) error {
	a, err := s.loadOwned(ctx, assetID, callerID)
	if err != nil {
		return err
	}
	if err := s.assets.Delete(ctx, a.ID); err != nil {
		return apperr.Internal("delete asset", err)
	}
	if err := s.store.DeleteObject(ctx, a.StorageKey); err != nil {
		s.log.Warn("failed to delete stored object", "asset_id", a.ID, "error", err)
	}
	return nil
}

func (s *fileService) ListMine(ctx context.Context, callerID string) ([]asset.Asset, error) {
	assets, err := s.assets.ListUploadedByUser(ctx, callerID)
	if err != nil {
		return nil, apperr.Internal("list assets", err)
	}
	return assets, nil
}

func (s *fileService) loadOwned(ctx context.Context, assetID, callerID string) (*asset.Asset, error) {
	a, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if a.UserID != callerID {
		return nil, apperr.Forbidden("you do not own this file")
	}
	return a, nil
}

func (s *fileService) loadAsset(ctx context.Context, assetID string) (*asset.Asset, error) {
	a, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("file not found")
		}
		return nil, apperr.Internal("load asset", err)
	}
	return a, nil
}

func buildStorageKey(userID, assetID, filename string) string {
	ext := path.Ext(filename)
	return fmt.Sprintf("assets/%s/%s%s", userID, assetID, ext)
}
