package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	MaxUploadSize  = 100 << 20
	mediaListLimit = 50
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	mediaKeyLength = 21
)

var allowedMediaTypes = map[string]string{
	"jpg":  models.MediaTypeImage,
	"png":  models.MediaTypeImage,
	"gif":  models.MediaTypeImage,
	"webp": models.MediaTypeImage,
	"mp4":  models.MediaTypeVideo,
	"mov":  models.MediaTypeVideo,
}

type MediaService interface {
	Upload(ctx context.Context, userID int64, fileName string, data []byte) (*models.MediaAsset, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
}

type mediaService struct {
	storage   ObjectStorage
	assets    repository.MediaAssetRepository
	publicURL string
}

func NewMediaService(storage ObjectStorage, assets repository.MediaAssetRepository, publicURL string) MediaService {
	return &mediaService{
		storage:   storage,
		assets:    assets,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Upload sniffs the content type, stores the file and returns an asset whose URL can go in media_urls.
func (s *mediaService) Upload(ctx context.Context, userID int64, fileName string, data []byte) (*models.MediaAsset, error) {
	if len(data) == 0 {
		return nil, validationError("file is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, validationError("file exceeds %d MB", MaxUploadSize>>20)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil, validationError("unsupported file type")
	}
	if _, ok := allowedMediaTypes[kind.Extension]; !ok {
		return nil, validationError("file type %s is not allowed", kind.Extension)
	}

	id, err := gonanoid.Generate(nanoidAlphabet, mediaKeyLength)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d/%s.%s", userID, id, kind.Extension)

	if err := s.storage.Upload(ctx, key, data, kind.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	if fileName == "" {
		fileName = key
	}
	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: fileName,
		FileType: kind.MIME.Value,
		FileSize: int64(len(data)),
		FileURL:  fmt.Sprintf("%s/%s", s.publicURL, key),
	}
	if _, err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *mediaService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return s.assets.ListByUserID(ctx, userID, mediaListLimit)
}
