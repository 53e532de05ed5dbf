package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SpamTypeTelemarketing = "telemarketing"
	SpamTypeScam          = "scam"
	SpamTypeAnnoying      = "annoying"
	SpamTypeOther         = "other"
)

// SpamReport is a single user's report against a number.
type SpamReport struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ReportedNumberID uuid.UUID `gorm:"type:uuid;not null;index" json:"reported_number_id"`
	PhoneNumber      string    `gorm:"size:32;not null;index" json:"phone_number"`
	SpamType         string    `gorm:"size:20;not null" json:"spam_type"`
	Description      string    `gorm:"size:1000" json:"description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (r *SpamReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
