package service

import (
	"context"

	"github.com/maheshrc27/socialpulse/internal/models"
	"github.com/maheshrc27/socialpulse/internal/repository"
	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/maheshrc27/socialpulse/pkg/utils"
)

const defaultTimezone = "UTC"

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, in *transfer.SettingsUpdate) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

// GetSettingsInfo returns stored settings, or defaults when the user has none yet.
func (s *settingsService) GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isExist {
		return &models.Settings{UserID: userID, Timezone: defaultTimezone}, nil
	}

	if settings.Timezone == "" {
		settings.Timezone = defaultTimezone
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, in *transfer.SettingsUpdate) error {
	if err := utils.ValidateStruct(in); err != nil {
		return validationError("%s", err.Error())
	}

	return s.sr.Upsert(ctx, &models.Settings{
		UserID:   userID,
		Timezone: in.Timezone,
		Category: in.Category,
		Tone:     in.Tone,
	})
}
