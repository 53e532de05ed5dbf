package repository

import (
	"context"
	"errors"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	var s models.UserSettings
	if err := r.db.WithContext(ctx).Scopes(ForUser(userID)).First(&s).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// EnsureDefault returns the user's settings, creating the default row if it is missing.
func (r *SettingsRepository) EnsureDefault(ctx context.Context, userID uuid.UUID) (*models.UserSettings, error) {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(models.DefaultSettings(userID)).Error; err != nil {
		return nil, err
	}
	return r.GetByUser(ctx, userID)
}

func (r *SettingsRepository) Save(ctx context.Context, s *models.UserSettings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SettingsRepository) Create(ctx context.Context, s *models.UserSettings) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
