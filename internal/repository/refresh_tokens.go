package repository

import (
	"context"
	"errors"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *RefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func revokeActive(tx *gorm.DB, hash string, now time.Time) *gorm.DB {
	return tx.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL AND expires_at > ?", hash, now).
		Update("revoked_at", now)
}

// Rotate revokes the active token with oldHash and stores its replacement for the
// same user in one transaction. It returns (nil, nil) when no active token matched,
// so of several concurrent rotations of one token only the first gets a replacement.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash, newHash string, expiresAt, now time.Time) (*models.RefreshToken, error) {
	now = now.UTC()
	var next *models.RefreshToken

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := revokeActive(tx, oldHash, now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}

		var old models.RefreshToken
		if err := tx.Where("token_hash = ?", oldHash).First(&old).Error; err != nil {
			return err
		}

		next = &models.RefreshToken{
			UserID:    old.UserID,
			TokenHash: newHash,
			ExpiresAt: expiresAt.UTC(),
			CreatedAt: now,
		}
		return tx.Create(next).Error
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// Revoke reports false when the token was unknown, expired or already revoked.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, hash string, now time.Time) (bool, error) {
	result := revokeActive(r.db.WithContext(ctx), hash, now.UTC())
	return result.RowsAffected > 0, result.Error
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Scopes(ForUser(userID)).
		Where("revoked_at IS NULL").
		Update("revoked_at", now.UTC())
	return result.RowsAffected, result.Error
}

// DeleteStale removes tokens that expired or were revoked before the cutoff.
func (r *RefreshTokenRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	before = before.UTC()
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", before, before).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
