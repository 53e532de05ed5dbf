package dto

import "time"

type CheckNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type CheckNumberResponse struct {
	PhoneNumber string `json:"phone_number"`
	IsSpam      bool   `json:"is_spam"`
	SpamType    string `json:"spam_type,omitempty"`
	RiskScore   int    `json:"risk_score"`
}

type IncomingCallRequest struct {
	PhoneNumber string    `json:"phone_number"`
	Timestamp   time.Time `json:"timestamp"`
}

type IncomingCallResponse struct {
	PhoneNumber string `json:"phone_number"`
	Action      string `json:"action"`
	Reason      string `json:"reason"`
	RiskScore   int    `json:"risk_score"`
	IsSpam      bool   `json:"is_spam"`
}

type CommentResponse struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type NumberInfoResponse struct {
	PhoneNumber     string            `json:"phone_number"`
	ReportCount     int               `json:"report_count"`
	RiskLevel       string            `json:"risk_level"`
	IsSpam          bool              `json:"is_spam"`
	SpamType        string            `json:"spam_type,omitempty"`
	FirstReportedAt *time.Time        `json:"first_reported_at,omitempty"`
	LastReportedAt  *time.Time        `json:"last_reported_at,omitempty"`
	Comments        []CommentResponse `json:"comments"`
}
