package dto

import "time"

type LastUpdateResponse struct {
	SettingsUpdatedAt       *time.Time `json:"settings_updated_at"`
	BlockedNumbersUpdatedAt *time.Time `json:"blocked_numbers_updated_at"`
}

type SyncBlockedNumber struct {
	PhoneNumber string    `json:"phone_number"`
	BlockedAt   time.Time `json:"blocked_at"`
	CallType    string    `json:"call_type,omitempty"`
}

type SyncBlockedNumbersRequest struct {
	Numbers []SyncBlockedNumber `json:"numbers"`
}

type SyncBlockedNumbersResponse struct {
	Received int   `json:"received"`
	Synced   int64 `json:"synced"`
}

type SyncSettingsRequest struct {
	BlockingMode         string              `json:"blocking_mode"`
	WorkingHours         WorkingHoursPayload `json:"working_hours"`
	NotificationsEnabled bool                `json:"notifications_enabled"`
	Timestamp            time.Time           `json:"timestamp"`
}

type SyncSettingsResponse struct {
	Applied  bool             `json:"applied"`
	Settings SettingsResponse `json:"settings"`
}
