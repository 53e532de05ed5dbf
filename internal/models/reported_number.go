package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ReportedNumber aggregates every spam report filed against a phone number.
type ReportedNumber struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumber     string          `gorm:"size:32;not null;uniqueIndex" json:"phone_number"`
	ReportCount     int             `gorm:"not null;default:0" json:"report_count"`
	RiskLevel       string          `gorm:"size:10;not null;default:'low'" json:"risk_level"`
	CommonSpamType  string          `gorm:"size:20" json:"common_spam_type,omitempty"`
	FirstReportedAt *time.Time      `json:"first_reported_at,omitempty"`
	LastReportedAt  *time.Time      `json:"last_reported_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Comments        []NumberComment `gorm:"foreignKey:ReportedNumberID" json:"-"`
}

func (r *ReportedNumber) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RiskLevelForCount maps a cumulative report count to its risk bucket.
func RiskLevelForCount(count int) string {
	switch {
	case count > 10:
		return RiskHigh
	case count > 5:
		return RiskMedium
	default:
		return RiskLow
	}
}
