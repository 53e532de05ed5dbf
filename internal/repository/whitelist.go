package repository

import (
	"context"
	"errors"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WhitelistRepository struct {
	db *gorm.DB
}

func NewWhitelistRepository(db *gorm.DB) *WhitelistRepository {
	return &WhitelistRepository{db: db}
}

// ListByUser returns the user's entries, newest first.
func (r *WhitelistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WhitelistEntry, error) {
	var entries []models.WhitelistEntry
	err := r.db.WithContext(ctx).Scopes(ForUser(userID)).Order("created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *WhitelistRepository) Exists(ctx context.Context, userID uuid.UUID, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WhitelistEntry{}).
		Scopes(ForUser(userID)).
		Where("phone_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// Add inserts an entry; a second entry for the same (user, number) yields ErrDuplicate.
func (r *WhitelistRepository) Add(ctx context.Context, entry *models.WhitelistEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Remove deletes the entry and reports whether one existed.
func (r *WhitelistRepository) Remove(ctx context.Context, userID uuid.UUID, number string) (bool, error) {
	result := r.db.WithContext(ctx).Scopes(ForUser(userID)).
		Where("phone_number = ?", number).
		Delete(&models.WhitelistEntry{})
	return result.RowsAffected > 0, result.Error
}
