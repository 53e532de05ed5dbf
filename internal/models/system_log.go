package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SystemLog stores ERROR+ log records for later querying.
type SystemLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp   time.Time      `gorm:"not null;index" json:"timestamp"`
	Level       string         `gorm:"size:10;not null;index" json:"level"`
	Message     string         `gorm:"type:text" json:"message"`
	RequestID   string         `gorm:"size:64;index" json:"request_id"`
	UserID      *string        `gorm:"size:36;index" json:"user_id"`
	Action      string         `gorm:"size:100" json:"action"`
	PhoneNumber string         `gorm:"size:32" json:"phone_number,omitempty"`
	Error       string         `gorm:"type:text" json:"error"`
	LatencyMs   int            `json:"latency_ms"`
	Extra       datatypes.JSON `json:"extra"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (l *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserSettings{},
		&WhitelistEntry{},
		&ReportedNumber{},
		&SpamReport{},
		&NumberComment{},
		&BlockedCall{},
		&RefreshToken{},
		&RemoteConfig{},
		&SystemLog{},
	}
}
