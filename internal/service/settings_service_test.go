package service

import (
	"context"
	"testing"

	"github.com/maheshrc27/socialpulse/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := &memSettings{}
	svc := NewSettingsService(repo)

	got, err := svc.GetSettingsInfo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "UTC", got.Timezone)

	require.NoError(t, svc.UpdateSettings(ctx, testUser, &transfer.SettingsUpdate{Timezone: "Asia/Kolkata", Tone: "formal"}))
	got, err = svc.GetSettingsInfo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", got.Timezone)
	assert.Equal(t, "formal", got.Tone)

	err = svc.UpdateSettings(ctx, testUser, &transfer.SettingsUpdate{Timezone: "Mars/Olympus"})
	assert.ErrorIs(t, err, ErrValidation)
}
