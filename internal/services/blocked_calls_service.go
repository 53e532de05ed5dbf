package services

import (
	"context"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
)

type BlockedCallStats struct {
	Today    int64
	ThisWeek int64
	Total    int64
}

type BlockedCallsService struct {
	calls BlockedCallStore
	now   func() time.Time
}

func NewBlockedCallsService(calls BlockedCallStore) *BlockedCallsService {
	return &BlockedCallsService{calls: calls, now: time.Now}
}

func (s *BlockedCallsService) List(ctx context.Context, rawUserID string, page, limit int) ([]models.BlockedCall, Page, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, Page{}, err
	}
	page, limit = normalizePage(page, limit)
	calls, total, err := s.calls.List(ctx, userID, page, limit)
	if err != nil {
		return nil, Page{}, err
	}
	return calls, newPage(page, limit, total), nil
}

// Stats counts calls since UTC midnight, since Monday 00:00 UTC and overall.
func (s *BlockedCallsService) Stats(ctx context.Context, rawUserID string) (*BlockedCallStats, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	today, week := dayAndWeekStart(s.now())

	var stats BlockedCallStats
	if stats.Today, err = s.calls.CountSince(ctx, userID, today); err != nil {
		return nil, err
	}
	if stats.ThisWeek, err = s.calls.CountSince(ctx, userID, week); err != nil {
		return nil, err
	}
	if stats.Total, err = s.calls.CountSince(ctx, userID, time.Time{}); err != nil {
		return nil, err
	}
	return &stats, nil
}

func dayAndWeekStart(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day, day.AddDate(0, 0, -offset)
}

func parseCallID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, validationError("invalid call id")
	}
	return id, nil
}

func (s *BlockedCallsService) Delete(ctx context.Context, rawUserID, rawCallID string) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}
	callID, err := parseCallID(rawCallID)
	if err != nil {
		return err
	}
	ok, err := s.calls.Delete(ctx, userID, callID)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundError("blocked call not found")
	}
	return nil
}

func (s *BlockedCallsService) DeleteAll(ctx context.Context, rawUserID string) (int64, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return 0, err
	}
	return s.calls.DeleteAll(ctx, userID)
}

func (s *BlockedCallsService) ReportWronglyBlocked(ctx context.Context, rawUserID, rawCallID string) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}
	callID, err := parseCallID(rawCallID)
	if err != nil {
		return err
	}
	ok, err := s.calls.MarkIncorrect(ctx, userID, callID)
	if err != nil {
		return err
	}
	if !ok {
		return notFoundError("blocked call not found")
	}
	return nil
}
