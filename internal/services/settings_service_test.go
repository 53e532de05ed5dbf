package services

import (
	"context"
	"testing"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_GetSettings(t *testing.T) {
	e := newTestEnv(t)
	svc := NewSettingsService(e.settings, e.whitelist)
	ctx := context.Background()
	user := e.createUser(t, "s@example.com", "password1")

	s, err := svc.GetSettings(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.BlockingModeKnown, s.BlockingMode)

	_, err = svc.GetSettings(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetSettings(ctx, "42")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettingsService_UpdateBlockingMode(t *testing.T) {
	e := newTestEnv(t)
	svc := NewSettingsService(e.settings, e.whitelist)
	ctx := context.Background()
	userID := uuid.NewString()

	s, err := svc.UpdateBlockingMode(ctx, userID, "ALL")
	require.NoError(t, err, "missing settings are created on update")
	assert.Equal(t, models.BlockingModeAll, s.BlockingMode)

	_, err = svc.UpdateBlockingMode(ctx, userID, "everything")
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := svc.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.BlockingModeAll, stored.BlockingMode)
}

func TestSettingsService_UpdateWorkingHours(t *testing.T) {
	e := newTestEnv(t)
	svc := NewSettingsService(e.settings, e.whitelist)
	ctx := context.Background()
	userID := uuid.NewString()

	s, err := svc.UpdateWorkingHours(ctx, userID, WorkingHours{Mode: "custom", Start: "09:00", End: "18:30"})
	require.NoError(t, err)
	assert.Equal(t, models.WorkingHoursCustom, s.WorkingHoursMode)
	require.NotNil(t, s.CustomStartTime)
	assert.Equal(t, "09:00", *s.CustomStartTime)
	assert.Equal(t, "18:30", *s.CustomEndTime)

	for _, w := range []WorkingHours{
		{Mode: "custom", Start: "9am", End: "18:00"},
		{Mode: "custom", Start: "09:00", End: ""},
		{Mode: "custom", Start: "19:00", End: "18:00"},
		{Mode: "weekends"},
	} {
		_, err := svc.UpdateWorkingHours(ctx, userID, w)
		assert.ErrorIs(t, err, ErrValidation, "%+v", w)
	}

	s, err = svc.UpdateWorkingHours(ctx, userID, WorkingHours{Mode: "24/7", Start: "01:00", End: "02:00"})
	require.NoError(t, err)
	assert.Nil(t, s.CustomStartTime)
	assert.Nil(t, s.CustomEndTime)
}

func TestSettingsService_UpdateNotifications(t *testing.T) {
	e := newTestEnv(t)
	svc := NewSettingsService(e.settings, e.whitelist)
	ctx := context.Background()
	user := e.createUser(t, "n@example.com", "password1")

	s, err := svc.UpdateNotifications(ctx, user.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, s.NotificationsEnabled)

	stored, err := svc.GetSettings(ctx, user.ID.String())
	require.NoError(t, err)
	assert.False(t, stored.NotificationsEnabled)
}

func TestSettingsService_Whitelist(t *testing.T) {
	e := newTestEnv(t)
	svc := NewSettingsService(e.settings, e.whitelist)
	ctx := context.Background()
	userID := uuid.NewString()

	entry, err := svc.AddToWhitelist(ctx, userID, "+1 (555) 000-1111", "Dentist")
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", entry.PhoneNumber)

	_, err = svc.AddToWhitelist(ctx, userID, "+15550001111", "Again")
	assert.ErrorIs(t, err, ErrConflict)

	list, err := svc.GetWhitelist(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1, "duplicate must not create a second row")

	_, err = svc.AddToWhitelist(ctx, userID, "12", "")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.RemoveFromWhitelist(ctx, userID, "+1-555-000-1111"))
	assert.ErrorIs(t, svc.RemoveFromWhitelist(ctx, userID, "+15550001111"), ErrNotFound)
}
