package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BlockingModeAll    = "all"
	BlockingModeKnown  = "known"
	BlockingModeCustom = "custom"

	WorkingHoursAlwaysOn = "24/7"
	WorkingHoursCustom   = "custom"
)

// UserSettings holds the per-user call screening policy.
type UserSettings struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	BlockingMode         string    `gorm:"size:20;not null;default:'known'" json:"blocking_mode"`
	WorkingHoursMode     string    `gorm:"size:20;not null;default:'24/7'" json:"working_hours_mode"`
	CustomStartTime      *string   `gorm:"size:5" json:"custom_start_time,omitempty"` // HH:mm
	CustomEndTime        *string   `gorm:"size:5" json:"custom_end_time,omitempty"`   // HH:mm
	NotificationsEnabled bool      `gorm:"not null;default:true" json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

func (s *UserSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DefaultSettings returns the settings a new account starts with.
func DefaultSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		UserID:               userID,
		BlockingMode:         BlockingModeKnown,
		WorkingHoursMode:     WorkingHoursAlwaysOn,
		NotificationsEnabled: true,
	}
}
