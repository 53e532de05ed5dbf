package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/callcleaner/backend/internal/models"
)

const maxSyncBatch = 500

type SyncStatus struct {
	SettingsUpdatedAt       *time.Time
	BlockedNumbersUpdatedAt *time.Time
}

// SyncedCall is a blocked call the device recorded while offline.
type SyncedCall struct {
	PhoneNumber string
	BlockedAt   time.Time
	CallType    string
}

// SettingsSnapshot is the device's copy of the settings as of Timestamp.
type SettingsSnapshot struct {
	BlockingMode         string
	WorkingHours         WorkingHours
	NotificationsEnabled bool
	Timestamp            time.Time
}

type SyncService struct {
	settings SettingsStore
	calls    BlockedCallStore
}

func NewSyncService(settings SettingsStore, calls BlockedCallStore) *SyncService {
	return &SyncService{settings: settings, calls: calls}
}

func (s *SyncService) LastUpdate(ctx context.Context, rawUserID string) (*SyncStatus, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	var status SyncStatus
	settings, err := s.settings.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		t := settings.UpdatedAt
		status.SettingsUpdatedAt = &t
	}
	if status.BlockedNumbersUpdatedAt, err = s.calls.LatestAt(ctx, userID); err != nil {
		return nil, err
	}
	return &status, nil
}

// SyncBlockedNumbers stores calls the server has not seen yet and returns how many
// were new. Replaying the same batch is harmless.
func (s *SyncService) SyncBlockedNumbers(ctx context.Context, rawUserID string, calls []SyncedCall) (int64, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return 0, err
	}
	if len(calls) > maxSyncBatch {
		return 0, validationError("at most %d numbers per sync", maxSyncBatch)
	}

	rows := make([]models.BlockedCall, 0, len(calls))
	for i, c := range calls {
		number, err := normalizeNumber(c.PhoneNumber)
		if err != nil {
			return 0, fmt.Errorf("%w: numbers[%d]", err, i)
		}
		if c.BlockedAt.IsZero() {
			return 0, validationError("numbers[%d]: blocked_at is required", i)
		}
		rows = append(rows, models.BlockedCall{
			UserID:      userID,
			PhoneNumber: number,
			BlockedAt:   c.BlockedAt,
			CallType:    strings.TrimSpace(c.CallType),
		})
	}

	synced, err := s.calls.CreateBatch(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to sync blocked numbers: %w", err)
	}
	slog.Info("blocked numbers synced", "user_id", userID.String(), "received", len(rows), "synced", synced)
	return synced, nil
}

// SyncSettings applies the snapshot unless the server copy changed after it was
// taken. It reports whether the snapshot was applied.
func (s *SyncService) SyncSettings(ctx context.Context, rawUserID string, snap SettingsSnapshot) (bool, *models.UserSettings, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return false, nil, err
	}
	if snap.Timestamp.IsZero() {
		return false, nil, validationError("timestamp is required")
	}
	mode := strings.ToLower(strings.TrimSpace(snap.BlockingMode))
	if !validBlockingMode(mode) {
		return false, nil, validationError("blocking mode must be one of all, known, custom")
	}
	hours, err := snap.WorkingHours.validate()
	if err != nil {
		return false, nil, err
	}

	settings, err := s.settings.EnsureDefault(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	if settings.UpdatedAt.After(snap.Timestamp) {
		return false, settings, nil
	}

	settings.BlockingMode = mode
	applyWorkingHours(settings, hours)
	settings.NotificationsEnabled = snap.NotificationsEnabled
	if err := s.settings.Save(ctx, settings); err != nil {
		return false, nil, err
	}
	return true, settings, nil
}
