package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
)

const maxApiKeys = 5

type ApiKeyService interface {
	Create(ctx context.Context, userID int64, in *transfer.CreateApiKey) (*transfer.CreatedApiKey, error)
	List(ctx context.Context, userID int64) ([]*models.ApiKey, error)
	// Authenticate maps a presented key to the user that owns it.
	Authenticate(ctx context.Context, key string) (int64, error)
	Remove(ctx context.Context, userID, keyID int64) error
}

type apiKeyService struct {
	keys repository.ApiKeyRepository
}

func NewApiKeyService(keys repository.ApiKeyRepository) ApiKeyService {
	return &apiKeyService{keys: keys}
}

func (s *apiKeyService) Create(ctx context.Context, userID int64, in *transfer.CreateApiKey) (*transfer.CreatedApiKey, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: no user", ErrUnauthorized)
	}
	if in == nil {
		in = &transfer.CreateApiKey{}
	}
	if err := utils.ValidateStruct(in); err != nil {
		return nil, validationError("%s", err.Error())
	}

	n, err := s.keys.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to count api keys: %w", err)
	}
	if n >= maxApiKeys {
		return nil, validationError("only %d API keys can be created", maxApiKeys)
	}

	plain, hash, prefix, err := utils.NewAPIKey()
	if err != nil {
		return nil, fmt.Errorf("unable to generate api key: %w", err)
	}

	key := &models.ApiKey{
		UserID:  userID,
		Name:    strings.TrimSpace(in.Name),
		Prefix:  prefix,
		KeyHash: hash,
	}
	if _, err := s.keys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("unable to save api key: %w", err)
	}
	return &transfer.CreatedApiKey{ApiKey: key, Key: plain}, nil
}

func (s *apiKeyService) List(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	keys, err := s.keys.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("unable to list api keys: %w", err)
	}
	if keys == nil {
		keys = []*models.ApiKey{}
	}
	return keys, nil
}

func (s *apiKeyService) Authenticate(ctx context.Context, key string) (int64, error) {
	key = strings.TrimSpace(key)
	if !utils.LooksLikeAPIKey(key) {
		return 0, fmt.Errorf("%w: malformed api key", ErrUnauthorized)
	}

	userID, ok, err := s.keys.Touch(ctx, utils.HashAPIKey(key))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: unknown api key", ErrUnauthorized)
	}
	return userID, nil
}

func (s *apiKeyService) Remove(ctx context.Context, userID, keyID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: no user", ErrUnauthorized)
	}
	if keyID <= 0 {
		return validationError("key id is required")
	}

	removed, err := s.keys.RemoveForUser(ctx, keyID, userID)
	if err != nil {
		return fmt.Errorf("unable to remove api key: %w", err)
	}
	if !removed {
		return fmt.Errorf("%w: api key %d", ErrNotFound, keyID)
	}
	return nil
}
