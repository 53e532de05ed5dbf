package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/phone"
	"github.com/google/uuid"
)

const numberInfoComments = 20

type CheckResult struct {
	IsSpam    bool
	SpamType  string
	RiskScore int
}

type NumberInfo struct {
	Number   *models.ReportedNumber
	IsSpam   bool
	SpamType string
	Comments []models.NumberComment
}

type NumberCheckService struct {
	numbers   ReportedNumberStore
	settings  SettingsStore
	whitelist WhitelistStore
	calls     BlockedCallStore
}

func NewNumberCheckService(numbers ReportedNumberStore, settings SettingsStore, whitelist WhitelistStore, calls BlockedCallStore) *NumberCheckService {
	return &NumberCheckService{
		numbers:   numbers,
		settings:  settings,
		whitelist: whitelist,
		calls:     calls,
	}
}

func normalizeNumber(raw string) (string, error) {
	n := phone.Normalize(raw)
	if !phone.Valid(n) {
		return "", validationError("phone number is invalid")
	}
	return n, nil
}

// CheckNumber classifies a number for the user. Whitelisted and unknown numbers
// score 0.
func (s *NumberCheckService) CheckNumber(ctx context.Context, rawUserID, rawNumber string) (*CheckResult, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	number, err := normalizeNumber(rawNumber)
	if err != nil {
		return nil, err
	}

	whitelisted, err := s.whitelist.Exists(ctx, userID, number)
	if err != nil {
		return nil, err
	}
	if whitelisted {
		return &CheckResult{}, nil
	}

	rn, err := s.numbers.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if rn == nil {
		return &CheckResult{}, nil
	}

	score := RiskScore(rn.ReportCount)
	res := &CheckResult{IsSpam: score == RiskScoreSpam, RiskScore: score}
	if res.IsSpam {
		res.SpamType = rn.CommonSpamType
	}
	return res, nil
}

// CheckIncomingCall decides what the device should do with a ringing call. Lookup
// failures degrade to Allow instead of surfacing as errors.
func (s *NumberCheckService) CheckIncomingCall(ctx context.Context, rawUserID, rawNumber string, callTime time.Time) (Decision, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return Decision{}, err
	}
	number, err := normalizeNumber(rawNumber)
	if err != nil {
		return Decision{}, err
	}
	if callTime.IsZero() {
		callTime = time.Now()
	}

	var whitelist []string
	entries, err := s.whitelist.ListByUser(ctx, userID)
	if err != nil {
		return s.failOpen(userID, number, "whitelist unavailable", err), nil
	}
	for _, e := range entries {
		whitelist = append(whitelist, e.PhoneNumber)
	}

	rn, err := s.numbers.FindByNumber(ctx, number)
	if err != nil {
		return s.failOpen(userID, number, "number lookup unavailable", err), nil
	}

	var settings *models.UserSettings
	if rn != nil {
		settings, err = s.settings.GetByUser(ctx, userID)
		if err != nil {
			slog.Error("settings lookup failed", "user_id", userID.String(), "error", err)
			settings = nil
		}
	}

	d := Decide(number, callTime, rn, settings, whitelist)
	slog.Info("incoming call decision",
		"user_id", userID.String(),
		"phone_number", number,
		"action", string(d.Action),
		"reason", d.Reason,
		"risk_score", d.RiskScore,
	)

	if d.Action == ActionBlock {
		call := &models.BlockedCall{UserID: userID, PhoneNumber: number, BlockedAt: callTime}
		if rn != nil {
			call.CallType = rn.CommonSpamType
		}
		if err := s.calls.Create(ctx, call); err != nil {
			slog.Error("failed to record blocked call", "user_id", userID.String(), "phone_number", number, "error", err)
		}
	}
	return d, nil
}

func (s *NumberCheckService) failOpen(userID uuid.UUID, number, reason string, err error) Decision {
	slog.Error("incoming call lookup failed, allowing",
		"user_id", userID.String(),
		"phone_number", number,
		"error", err,
	)
	return Decision{Action: ActionAllow, Reason: reason}
}

// GetNumberInfo returns the public aggregate for a reported number.
func (s *NumberCheckService) GetNumberInfo(ctx context.Context, rawNumber string) (*NumberInfo, error) {
	number, err := normalizeNumber(rawNumber)
	if err != nil {
		return nil, err
	}
	rn, err := s.numbers.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if rn == nil {
		return nil, notFoundError("number has no reports")
	}

	comments, err := s.numbers.Comments(ctx, rn.ID, numberInfoComments)
	if err != nil {
		return nil, err
	}
	info := &NumberInfo{
		Number:   rn,
		IsSpam:   RiskScore(rn.ReportCount) == RiskScoreSpam,
		Comments: comments,
	}
	if info.IsSpam {
		info.SpamType = rn.CommonSpamType
	}
	return info, nil
}

// ListReportedNumbers is the admin view over every reported number.
func (s *NumberCheckService) ListReportedNumbers(ctx context.Context, page, limit int) ([]models.ReportedNumber, Page, error) {
	page, limit = normalizePage(page, limit)
	numbers, total, err := s.numbers.List(ctx, page, limit)
	if err != nil {
		return nil, Page{}, err
	}
	return numbers, newPage(page, limit, total), nil
}
