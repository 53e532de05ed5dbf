package dto

import "time"

type CreateReportRequest struct {
	PhoneNumber string `json:"phone_number"`
	SpamType    string `json:"spam_type"`
	Description string `json:"description"`
}

type ReportResponse struct {
	PhoneNumber    string `json:"phone_number"`
	ReportCount    int    `json:"report_count"`
	RiskLevel      string `json:"risk_level"`
	CommonSpamType string `json:"common_spam_type,omitempty"`
}

type ReportedNumberResponse struct {
	PhoneNumber     string     `json:"phone_number"`
	ReportCount     int        `json:"report_count"`
	RiskLevel       string     `json:"risk_level"`
	CommonSpamType  string     `json:"common_spam_type,omitempty"`
	FirstReportedAt *time.Time `json:"first_reported_at,omitempty"`
	LastReportedAt  *time.Time `json:"last_reported_at,omitempty"`
}

type ReportedNumbersResponse struct {
	Numbers    []ReportedNumberResponse `json:"numbers"`
	Pagination PageMeta                 `json:"pagination"`
}
