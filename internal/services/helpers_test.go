package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/database/databasetest"
	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	passwordIterations = 1000
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTIssuer:          "callcleaner",
		JWTAudience:        "callcleaner-mobile",
		JWTAccessExpiry:    15 * time.Minute,
		JWTRefreshExpiry:   30 * 24 * time.Hour,
		EmailConfirmExpiry: 24 * time.Hour,
		ResetCodeExpiry:    15 * time.Minute,
		PublicBaseURL:      "http://localhost:8080",
	}
}

type testEnv struct {
	db        *gorm.DB
	users     *repository.UserRepository
	settings  *repository.SettingsRepository
	whitelist *repository.WhitelistRepository
	numbers   *repository.ReportedNumberRepository
	tokens    *repository.RefreshTokenRepository
	calls     *repository.BlockedCallRepository
	configs   *repository.RemoteConfigRepository
}

func newTestEnv(t *testing.T) *testEnv {
	db := databasetest.Open(t)
	return &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		settings:  repository.NewSettingsRepository(db),
		whitelist: repository.NewWhitelistRepository(db),
		numbers:   repository.NewReportedNumberRepository(db),
		tokens:    repository.NewRefreshTokenRepository(db),
		calls:     repository.NewBlockedCallRepository(db),
		configs:   repository.NewRemoteConfigRepository(db),
	}
}

func (e *testEnv) createUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Email: email, FullName: "Test User", PasswordHash: hash, Role: models.RoleUser, IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) report(t *testing.T, number, spamType string, times int) {
	t.Helper()
	for i := 0; i < times; i++ {
		_, err := e.numbers.RecordReport(context.Background(), repository.ReportInput{
			PhoneNumber: number,
			SpamType:    spamType,
			ReporterID:  uuid.New(),
			At:          time.Now().UTC(),
		})
		require.NoError(t, err)
	}
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return m.err
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}
	}
	return m.sent[len(m.sent)-1]
}
