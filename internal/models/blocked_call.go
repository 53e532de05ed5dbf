package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockedCall is one entry of a user's blocked-call history. A (user, number, instant)
// triple is stored once so device sync can be replayed safely.
type BlockedCall struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocked_calls_dedupe,priority:1;index" json:"-"`
	PhoneNumber         string    `gorm:"size:32;not null;uniqueIndex:idx_blocked_calls_dedupe,priority:2" json:"phone_number"`
	BlockedAt           time.Time `gorm:"not null;uniqueIndex:idx_blocked_calls_dedupe,priority:3;index" json:"blocked_at"`
	CallType            string    `gorm:"size:50" json:"call_type,omitempty"`
	ReportedAsIncorrect bool      `gorm:"not null;default:false" json:"reported_as_incorrect"`
	CreatedAt           time.Time `json:"created_at"`
}

func (BlockedCall) TableName() string {
	return "blocked_calls"
}

func (b *BlockedCall) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
