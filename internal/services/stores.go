package services

import (
	"context"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/repository"
	"github.com/google/uuid"
)

// The interfaces below are satisfied by the repository package. Finders return
// (nil, nil) when nothing matches.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteWithData(ctx context.Context, id uuid.UUID) error
}

type SettingsStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	EnsureDefault(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error)
	Save(ctx context.Context, s *models.UserSettings) error
}

type WhitelistStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WhitelistEntry, error)
	Exists(ctx context.Context, userID uuid.UUID, number string) (bool, error)
	Add(ctx context.Context, entry *models.WhitelistEntry) error
	Remove(ctx context.Context, userID uuid.UUID, number string) (bool, error)
}

type ReportedNumberStore interface {
	FindByNumber(ctx context.Context, number string) (*models.ReportedNumber, error)
	RecordReport(ctx context.Context, in repository.ReportInput) (*models.ReportedNumber, error)
	Comments(ctx context.Context, reportedNumberID uuid.UUID, limit int) ([]models.NumberComment, error)
	List(ctx context.Context, page, limit int) ([]models.ReportedNumber, int64, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	Rotate(ctx context.Context, oldHash, newHash string, expiresAt, now time.Time) (*models.RefreshToken, error)
	Revoke(ctx context.Context, hash string, now time.Time) (bool, error)
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

type BlockedCallStore interface {
	Create(ctx context.Context, call *models.BlockedCall) error
	CreateBatch(ctx context.Context, calls []models.BlockedCall) (int64, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.BlockedCall, int64, error)
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkIncorrect(ctx context.Context, userID, id uuid.UUID) (bool, error)
	LatestAt(ctx context.Context, userID uuid.UUID) (*time.Time, error)
}

type RemoteConfigStore interface {
	All(ctx context.Context) ([]models.RemoteConfig, error)
	Get(ctx context.Context, key string) (*models.RemoteConfig, error)
	Upsert(ctx context.Context, key, value, typ string) (*models.RemoteConfig, error)
	Delete(ctx context.Context, key string) (bool, error)
	SeedDefaults(ctx context.Context, defaults []models.RemoteConfig) error
}

var (
	_ UserStore           = (*repository.UserRepository)(nil)
	_ SettingsStore       = (*repository.SettingsRepository)(nil)
	_ WhitelistStore      = (*repository.WhitelistRepository)(nil)
	_ ReportedNumberStore = (*repository.ReportedNumberRepository)(nil)
	_ RefreshTokenStore   = (*repository.RefreshTokenRepository)(nil)
	_ BlockedCallStore    = (*repository.BlockedCallRepository)(nil)
	_ RemoteConfigStore   = (*repository.RemoteConfigRepository)(nil)
)
