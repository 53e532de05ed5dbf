package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportInput is one spam report to fold into a number's aggregate.
type ReportInput struct {
	PhoneNumber string
	SpamType    string
	ReporterID  uuid.UUID
	Description string
	At          time.Time
}

// ReporterCooldown is how long a reporter's repeat reports on one number stop adding
// to its count.
const ReporterCooldown = 24 * time.Hour

type ReportedNumberRepository struct {
	db *gorm.DB
}

func NewReportedNumberRepository(db *gorm.DB) *ReportedNumberRepository {
	return &ReportedNumberRepository{db: db}
}

func (r *ReportedNumberRepository) FindByNumber(ctx context.Context, number string) (*models.ReportedNumber, error) {
	var rn models.ReportedNumber
	if err := r.db.WithContext(ctx).Where("phone_number = ?", number).First(&rn).Error; err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &rn, nil
}

// RecordReport creates the aggregate on first report and bumps it on later ones. A
// reporter counts once per number within ReporterCooldown; repeats are still stored.
// The count is incremented in SQL so concurrent reports never lose an update.
func (r *ReportedNumberRepository) RecordReport(ctx context.Context, in ReportInput) (*models.ReportedNumber, error) {
	at := in.At.UTC()
	var out models.ReportedNumber

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &models.ReportedNumber{
			PhoneNumber: in.PhoneNumber,
			RiskLevel:   models.RiskLow,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone_number"}},
			DoNothing: true,
		}).Create(seed).Error; err != nil {
			return fmt.Errorf("insert reported number: %w", err)
		}

		if err := tx.Where("phone_number = ?", in.PhoneNumber).First(&out).Error; err != nil {
			return err
		}

		var recent int64
		if err := tx.Model(&models.SpamReport{}).
			Where("reported_number_id = ? AND user_id = ? AND created_at > ?", out.ID, in.ReporterID, at.Add(-ReporterCooldown)).
			Count(&recent).Error; err != nil {
			return fmt.Errorf("count recent reports: %w", err)
		}

		updates := map[string]interface{}{
			"first_reported_at": gorm.Expr("COALESCE(first_reported_at, ?)", at),
			"last_reported_at":  at,
		}
		if recent == 0 {
			updates["report_count"] = gorm.Expr("report_count + 1")
		}
		if err := tx.Model(&models.ReportedNumber{}).
			Where("id = ?", out.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("increment report count: %w", err)
		}

		if err := tx.Where("id = ?", out.ID).First(&out).Error; err != nil {
			return err
		}

		report := &models.SpamReport{
			UserID:           in.ReporterID,
			ReportedNumberID: out.ID,
			PhoneNumber:      in.PhoneNumber,
			SpamType:         in.SpamType,
			Description:      in.Description,
			CreatedAt:        at,
		}
		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("insert spam report: %w", err)
		}

		if in.Description != "" {
			comment := &models.NumberComment{
				UserID:           in.ReporterID,
				ReportedNumberID: out.ID,
				Text:             in.Description,
				CreatedAt:        at,
			}
			if err := tx.Create(comment).Error; err != nil {
				return fmt.Errorf("insert comment: %w", err)
			}
		}

		var common struct {
			SpamType string
			Total    int64
		}
		if err := tx.Model(&models.SpamReport{}).
			Select("spam_type, COUNT(DISTINCT user_id) AS total").
			Where("reported_number_id = ?", out.ID).
			Group("spam_type").
			Order("total DESC, spam_type ASC").
			Limit(1).
			Scan(&common).Error; err != nil {
			return err
		}

		out.RiskLevel = models.RiskLevelForCount(out.ReportCount)
		out.CommonSpamType = common.SpamType
		return tx.Model(&models.ReportedNumber{}).
			Where("id = ?", out.ID).
			Updates(map[string]interface{}{
				"risk_level":       out.RiskLevel,
				"common_spam_type": out.CommonSpamType,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Comments returns the newest comments on a number.
func (r *ReportedNumberRepository) Comments(ctx context.Context, reportedNumberID uuid.UUID, limit int) ([]models.NumberComment, error) {
	var comments []models.NumberComment
	err := r.db.WithContext(ctx).
		Where("reported_number_id = ?", reportedNumberID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// List returns reported numbers with the most reports first.
func (r *ReportedNumberRepository) List(ctx context.Context, page, limit int) ([]models.ReportedNumber, int64, error) {
	var numbers []models.ReportedNumber
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.ReportedNumber{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("report_count DESC, last_reported_at DESC").
		Scopes(Paginate(page, limit)).
		Find(&numbers).Error
	return numbers, total, err
}
