package repository

import (
	"context"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RemoteConfigRepository struct {
	db *gorm.DB
}

func NewRemoteConfigRepository(db *gorm.DB) *RemoteConfigRepository {
	return &RemoteConfigRepository{db: db}
}

func (r *RemoteConfigRepository) All(ctx context.Context) ([]models.RemoteConfig, error) {
	var configs []models.RemoteConfig
	err := r.db.WithContext(ctx).Order("key ASC").Find(&configs).Error
	return configs, err
}

func (r *RemoteConfigRepository) Get(ctx context.Context, key string) (*models.RemoteConfig, error) {
	var rc models.RemoteConfig
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&rc).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}

func (r *RemoteConfigRepository) Upsert(ctx context.Context, key, value, typ string) (*models.RemoteConfig, error) {
	rc := &models.RemoteConfig{Key: key, Value: value, Type: typ, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(rc).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, key)
}

func (r *RemoteConfigRepository) Delete(ctx context.Context, key string) (bool, error) {
	result := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.RemoteConfig{})
	return result.RowsAffected > 0, result.Error
}

// SeedDefaults inserts the given entries, leaving keys that already exist untouched.
func (r *RemoteConfigRepository) SeedDefaults(ctx context.Context, defaults []models.RemoteConfig) error {
	if len(defaults) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&defaults).Error
}
