package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_SubmitReport(t *testing.T) {
	e := newTestEnv(t)
	svc := NewReportService(e.numbers, e.calls, NewContentFilter())
	ctx := context.Background()
	userID := uuid.NewString()

	rn, err := svc.SubmitReport(ctx, userID, "+90 532 000 0000", "Scam", "asked for my card number")
	require.NoError(t, err)
	assert.Equal(t, "+905320000000", rn.PhoneNumber)
	assert.Equal(t, 1, rn.ReportCount)
	assert.Equal(t, models.RiskLow, rn.RiskLevel)

	comments, err := e.numbers.Comments(ctx, rn.ID, 10)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "asked for my card number", comments[0].Text)

	for i := 0; i < 10; i++ {
		rn, err = svc.SubmitReport(ctx, uuid.NewString(), "+905320000000", "telemarketing", "")
		require.NoError(t, err)
	}
	assert.Equal(t, 11, rn.ReportCount)
	assert.Equal(t, models.RiskHigh, rn.RiskLevel)
	assert.Equal(t, models.SpamTypeTelemarketing, rn.CommonSpamType)

	comments, err = e.numbers.Comments(ctx, rn.ID, 10)
	require.NoError(t, err)
	assert.Len(t, comments, 1, "empty descriptions add no comment")
}

func TestReportService_RepeatReporterCountsOnce(t *testing.T) {
	e := newTestEnv(t)
	svc := NewReportService(e.numbers, e.calls, NewContentFilter())
	ctx := context.Background()
	userID := uuid.NewString()
	now := time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	var rn *models.ReportedNumber
	var err error
	for i := 0; i < 11; i++ {
		rn, err = svc.SubmitReport(ctx, userID, "+15550042", "scam", "")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, rn.ReportCount)
	assert.Equal(t, models.RiskLow, rn.RiskLevel)

	rn, err = svc.SubmitReport(ctx, uuid.NewString(), "+15550042", "annoying", "")
	require.NoError(t, err)
	assert.Equal(t, 2, rn.ReportCount)

	now = now.Add(25 * time.Hour)
	rn, err = svc.SubmitReport(ctx, userID, "+15550042", "scam", "")
	require.NoError(t, err)
	assert.Equal(t, 3, rn.ReportCount)
}

func TestReportService_SubmitReportValidation(t *testing.T) {
	e := newTestEnv(t)
	svc := NewReportService(e.numbers, e.calls, NewContentFilter())
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := svc.SubmitReport(ctx, userID, "+15550001", "robocall", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SubmitReport(ctx, userID, "abc", "scam", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SubmitReport(ctx, userID, "+15550001", "scam", "visit https://evil.example now")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SubmitReport(ctx, userID, "+15550001", "scam", strings.Repeat("a ", 600))
	assert.ErrorIs(t, err, ErrValidation)

	rn, err := e.numbers.FindByNumber(ctx, "+15550001")
	require.NoError(t, err)
	assert.Nil(t, rn, "rejected reports leave no trace")
}

func TestReportService_RecentCallsAndTypes(t *testing.T) {
	e := newTestEnv(t)
	svc := NewReportService(e.numbers, e.calls, NewContentFilter())
	ctx := context.Background()
	userID := uuid.New()

	for i := 1; i <= 3; i++ {
		call := &models.BlockedCall{UserID: userID, PhoneNumber: fmt.Sprintf("+155500%02d", i), BlockedAt: noon.Add(-timeHour(i))}
		require.NoError(t, e.calls.Create(ctx, call))
	}

	calls, err := svc.GetRecentCalls(ctx, userID.String(), 2)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "+15550001", calls[0].PhoneNumber)

	types := svc.GetSpamTypes()
	require.Len(t, types, 4)
	assert.Equal(t, models.SpamTypeTelemarketing, types[0].ID)
}
