package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NumberComment is free text a user left about a reported number.
type NumberComment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ReportedNumberID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Text             string    `gorm:"size:1000;not null" json:"text"`
	CreatedAt        time.Time `json:"created_at"`
}

func (c *NumberComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
