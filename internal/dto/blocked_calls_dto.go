package dto

import (
	"time"

	"github.com/google/uuid"
)

type BlockedCallResponse struct {
	ID                  uuid.UUID `json:"id"`
	PhoneNumber         string    `json:"phone_number"`
	BlockedAt           time.Time `json:"blocked_at"`
	CallType            string    `json:"call_type,omitempty"`
	ReportedAsIncorrect bool      `json:"reported_as_incorrect"`
}

type BlockedCallsResponse struct {
	Calls      []BlockedCallResponse `json:"calls"`
	Pagination PageMeta              `json:"pagination"`
}

type BlockedCallStatsResponse struct {
	Today    int64 `json:"today"`
	ThisWeek int64 `json:"this_week"`
	Total    int64 `json:"total"`
}

type DeletedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
