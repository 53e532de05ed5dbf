package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/callcleaner/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(e *testEnv) *TokenService {
	return NewTokenService(e.tokens, e.users, testConfig())
}

func TestTokenService_AccessTokenClaims(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	user := e.createUser(t, "claims@example.com", "password1")

	raw, exp, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, user.FullName, claims["name"])
	assert.NotEmpty(t, claims["jti"])

	id, err := svc.ParseAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestTokenService_ExpiredAccessTokenRejected(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	user := e.createUser(t, "old@example.com", "password1")

	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, _, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
}

func TestTokenService_RefreshRotationIsSingleUse(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	ctx := context.Background()
	user := e.createUser(t, "rotate@example.com", "password1")

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	assert.Len(t, pair.RefreshToken, 86)

	next, err := svc.RotateRefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, user.ID, next.User.ID)

	_, err = svc.RotateRefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)

	_, err = svc.RotateRefreshToken(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_ExpiredRefreshTokenRejected(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	ctx := context.Background()
	user := e.createUser(t, "expired@example.com", "password1")

	svc.now = func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }
	raw, _, err := svc.IssueRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.RotateRefreshToken(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)

	revoked, err := svc.RevokeRefreshToken(ctx, raw)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenService_RevokedRefreshTokenRejected(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	ctx := context.Background()
	user := e.createUser(t, "revoked@example.com", "password1")

	raw, _, err := svc.IssueRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	revoked, err := svc.RevokeRefreshToken(ctx, raw)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = svc.RotateRefreshToken(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)

	_, err = svc.RotateRefreshToken(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
}

func TestTokenService_RevokeAllForUser(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	ctx := context.Background()
	user := e.createUser(t, "all@example.com", "password1")

	a, _, err := svc.IssueRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	b, _, err := svc.IssueRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForUser(ctx, user.ID))

	for _, raw := range []string{a, b} {
		_, err := svc.RotateRefreshToken(ctx, raw)
		assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
	}
}

func TestTokenService_ConcurrentRotationHasOneWinner(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	ctx := context.Background()
	user := e.createUser(t, "race@example.com", "password1")

	raw, _, err := svc.IssueRefreshToken(ctx, user.ID)
	require.NoError(t, err)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RotateRefreshToken(ctx, raw)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, rejected)
}

func TestTokenService_InactiveUserCannotRefresh(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	ctx := context.Background()
	user := e.createUser(t, "inactive@example.com", "password1")

	raw, _, err := svc.IssueRefreshToken(ctx, user.ID)
	require.NoError(t, err)
	_, err = e.users.Deactivate(ctx, user.ID)
	require.NoError(t, err)

	_, err = svc.RotateRefreshToken(ctx, raw)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
}

func TestTokenService_EmailConfirmationToken(t *testing.T) {
	e := newTestEnv(t)
	svc := newTokenService(e)
	user := &models.User{ID: uuid.New(), Email: "c@example.com"}

	raw, err := svc.IssueEmailConfirmationToken(user)
	require.NoError(t, err)

	id, err := svc.ParseEmailConfirmationToken(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = svc.ParseAccessToken(raw)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked, "confirmation tokens must not work as access tokens")

	access, _, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	_, err = svc.ParseEmailConfirmationToken(access)
	assert.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
}
