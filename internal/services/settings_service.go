package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/repository"
)

type SettingsService struct {
	settings  SettingsStore
	whitelist WhitelistStore
}

func NewSettingsService(settings SettingsStore, whitelist WhitelistStore) *SettingsService {
	return &SettingsService{settings: settings, whitelist: whitelist}
}

// GetSettings returns NotFound when the user has no settings row yet.
func (s *SettingsService) GetSettings(ctx context.Context, rawUserID string) (*models.UserSettings, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, notFoundError("settings not found")
	}
	return settings, nil
}

func (s *SettingsService) load(ctx context.Context, rawUserID string) (*models.UserSettings, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	return s.settings.EnsureDefault(ctx, userID)
}

func validBlockingMode(mode string) bool {
	switch mode {
	case models.BlockingModeAll, models.BlockingModeKnown, models.BlockingModeCustom:
		return true
	}
	return false
}

func (s *SettingsService) UpdateBlockingMode(ctx context.Context, rawUserID, mode string) (*models.UserSettings, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !validBlockingMode(mode) {
		return nil, validationError("blocking mode must be one of all, known, custom")
	}
	settings, err := s.load(ctx, rawUserID)
	if err != nil {
		return nil, err
	}
	settings.BlockingMode = mode
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// WorkingHours is the requested schedule; Start and End are "HH:mm" and only used
// in custom mode.
type WorkingHours struct {
	Mode  string
	Start string
	End   string
}

func (w WorkingHours) validate() (WorkingHours, error) {
	w.Mode = strings.ToLower(strings.TrimSpace(w.Mode))
	switch w.Mode {
	case models.WorkingHoursAlwaysOn:
		return WorkingHours{Mode: w.Mode}, nil
	case models.WorkingHoursCustom:
		start, err := ParseClock(w.Start)
		if err != nil {
			return w, validationError("start time must be HH:mm")
		}
		end, err := ParseClock(w.End)
		if err != nil {
			return w, validationError("end time must be HH:mm")
		}
		if start > end {
			return w, validationError("start time must not be after end time")
		}
		return w, nil
	default:
		return w, validationError("working hours mode must be 24/7 or custom")
	}
}

func applyWorkingHours(settings *models.UserSettings, w WorkingHours) {
	settings.WorkingHoursMode = w.Mode
	if w.Mode == models.WorkingHoursCustom {
		start, end := w.Start, w.End
		settings.CustomStartTime = &start
		settings.CustomEndTime = &end
	} else {
		settings.CustomStartTime = nil
		settings.CustomEndTime = nil
	}
}

func (s *SettingsService) UpdateWorkingHours(ctx context.Context, rawUserID string, w WorkingHours) (*models.UserSettings, error) {
	w, err := w.validate()
	if err != nil {
		return nil, err
	}
	settings, err := s.load(ctx, rawUserID)
	if err != nil {
		return nil, err
	}
	applyWorkingHours(settings, w)
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) UpdateNotifications(ctx context.Context, rawUserID string, enabled bool) (*models.UserSettings, error) {
	settings, err := s.load(ctx, rawUserID)
	if err != nil {
		return nil, err
	}
	settings.NotificationsEnabled = enabled
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetWhitelist returns the user's entries, newest first.
func (s *SettingsService) GetWhitelist(ctx context.Context, rawUserID string) ([]models.WhitelistEntry, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	return s.whitelist.ListByUser(ctx, userID)
}

func (s *SettingsService) AddToWhitelist(ctx context.Context, rawUserID, rawNumber, name string) (*models.WhitelistEntry, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	number, err := normalizeNumber(rawNumber)
	if err != nil {
		return nil, err
	}

	exists, err := s.whitelist.Exists(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: number already whitelisted", ErrConflict)
	}

	entry := &models.WhitelistEntry{UserID: userID, PhoneNumber: number, Name: strings.TrimSpace(name)}
	if err := s.whitelist.Add(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: number already whitelisted", ErrConflict)
		}
		return nil, err
	}
	return entry, nil
}

func (s *SettingsService) RemoveFromWhitelist(ctx context.Context, rawUserID, rawNumber string) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}
	number, err := normalizeNumber(rawNumber)
	if err != nil {
		return err
	}
	removed, err := s.whitelist.Remove(ctx, userID, number)
	if err != nil {
		return err
	}
	if !removed {
		return notFoundError("number is not whitelisted")
	}
	return nil
}
