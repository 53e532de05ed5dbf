package dto

import "time"

type SettingsResponse struct {
	BlockingMode         string              `json:"blocking_mode"`
	WorkingHours         WorkingHoursPayload `json:"working_hours"`
	NotificationsEnabled bool                `json:"notifications_enabled"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

type WorkingHoursPayload struct {
	Mode      string `json:"mode"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type BlockingModeRequest struct {
	Mode string `json:"mode"`
}

type NotificationsRequest struct {
	Enabled *bool `json:"enabled"`
}

type WhitelistRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}

type WhitelistEntryResponse struct {
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
