package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/repository"
)

const maxDescriptionLength = 1000

// SpamType is one selectable report category.
type SpamType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var spamTypes = []SpamType{
	{ID: models.SpamTypeTelemarketing, Name: "Telemarketing"},
	{ID: models.SpamTypeScam, Name: "Scam"},
	{ID: models.SpamTypeAnnoying, Name: "Annoying"},
	{ID: models.SpamTypeOther, Name: "Other"},
}

func validSpamType(t string) bool {
	for _, st := range spamTypes {
		if st.ID == t {
			return true
		}
	}
	return false
}

type ReportService struct {
	numbers ReportedNumberStore
	calls   BlockedCallStore
	filter  *ContentFilter
	now     func() time.Time
}

func NewReportService(numbers ReportedNumberStore, calls BlockedCallStore, filter *ContentFilter) *ReportService {
	return &ReportService{numbers: numbers, calls: calls, filter: filter, now: time.Now}
}

// SubmitReport records one report against a number and returns the updated aggregate.
func (s *ReportService) SubmitReport(ctx context.Context, rawUserID, rawNumber, spamType, description string) (*models.ReportedNumber, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	number, err := normalizeNumber(rawNumber)
	if err != nil {
		return nil, err
	}
	spamType = strings.ToLower(strings.TrimSpace(spamType))
	if !validSpamType(spamType) {
		return nil, validationError("spam type must be one of telemarketing, scam, annoying, other")
	}
	description = strings.TrimSpace(description)
	if len(description) > maxDescriptionLength {
		return nil, validationError("description must be at most %d characters", maxDescriptionLength)
	}
	if code, ok := s.filter.Check(description); !ok {
		return nil, fmt.Errorf("%w: %s", ErrValidation, RejectionMessage(code))
	}

	rn, err := s.numbers.RecordReport(ctx, repository.ReportInput{
		PhoneNumber: number,
		SpamType:    spamType,
		ReporterID:  userID,
		Description: description,
		At:          s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}
	slog.Info("spam report submitted",
		"user_id", userID.String(),
		"phone_number", number,
		"spam_type", spamType,
		"report_count", rn.ReportCount,
	)
	return rn, nil
}

// GetRecentCalls returns the user's most recently blocked calls.
func (s *ReportService) GetRecentCalls(ctx context.Context, rawUserID string, limit int) ([]models.BlockedCall, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	_, limit = normalizePage(1, limit)
	calls, _, err := s.calls.List(ctx, userID, 1, limit)
	return calls, err
}

func (s *ReportService) GetSpamTypes() []SpamType {
	out := make([]SpamType, len(spamTypes))
	copy(out, spamTypes)
	return out
}
