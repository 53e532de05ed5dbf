package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WhitelistEntry exempts a number from blocking for one user.
type WhitelistEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_whitelist_user_number,priority:1" json:"-"`
	PhoneNumber string    `gorm:"size:32;not null;uniqueIndex:idx_whitelist_user_number,priority:2" json:"phone_number"`
	Name        string    `gorm:"size:255" json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (w *WhitelistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
