package repository

import (
	"context"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockedCallRepository struct {
	db *gorm.DB
}

func NewBlockedCallRepository(db *gorm.DB) *BlockedCallRepository {
	return &BlockedCallRepository{db: db}
}

var blockedCallDedupe = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "phone_number"}, {Name: "blocked_at"}},
	DoNothing: true,
}

// Create stores a call; a call already recorded at the same instant is ignored.
func (r *BlockedCallRepository) Create(ctx context.Context, call *models.BlockedCall) error {
	call.BlockedAt = call.BlockedAt.UTC()
	return r.db.WithContext(ctx).Clauses(blockedCallDedupe).Create(call).Error
}

// CreateBatch inserts calls skipping duplicates and returns how many rows were new.
func (r *BlockedCallRepository) CreateBatch(ctx context.Context, calls []models.BlockedCall) (int64, error) {
	if len(calls) == 0 {
		return 0, nil
	}
	for i := range calls {
		calls[i].BlockedAt = calls[i].BlockedAt.UTC()
	}
	result := r.db.WithContext(ctx).Clauses(blockedCallDedupe).CreateInBatches(calls, 100)
	return result.RowsAffected, result.Error
}

// List returns a page of the user's history, newest first, and the total count.
func (r *BlockedCallRepository) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.BlockedCall, int64, error) {
	var calls []models.BlockedCall
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.BlockedCall{}).Scopes(ForUser(userID)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Scopes(ForUser(userID), Paginate(page, limit)).
		Order("blocked_at DESC").
		Find(&calls).Error
	return calls, total, err
}

// CountSince counts calls blocked at or after since. A zero since counts everything.
func (r *BlockedCallRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BlockedCall{}).Scopes(ForUser(userID))
	if !since.IsZero() {
		query = query.Where("blocked_at >= ?", since.UTC())
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *BlockedCallRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Scopes(ForUser(userID)).Delete(&models.BlockedCall{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *BlockedCallRepository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Scopes(ForUser(userID)).Delete(&models.BlockedCall{})
	return result.RowsAffected, result.Error
}

// MarkIncorrect flags a call the user says should not have been blocked.
func (r *BlockedCallRepository) MarkIncorrect(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.BlockedCall{}).
		Scopes(ForUser(userID)).
		Where("id = ?", id).
		Update("reported_as_incorrect", true)
	return result.RowsAffected > 0, result.Error
}

// LatestAt returns when the user's newest call was blocked, or nil if there are none.
func (r *BlockedCallRepository) LatestAt(ctx context.Context, userID uuid.UUID) (*time.Time, error) {
	var call models.BlockedCall
	err := r.db.WithContext(ctx).Scopes(ForUser(userID)).Order("blocked_at DESC").First(&call).Error
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &call.BlockedAt, nil
}
