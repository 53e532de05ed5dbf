package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenBytes = 64

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *models.User
}

// TokenService issues short-lived access JWTs and single-use rotating refresh tokens.
type TokenService struct {
	tokens        RefreshTokenStore
	users         UserStore
	secret        []byte
	confirmSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	confirmTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(tokens RefreshTokenStore, users UserStore, cfg *config.Config) *TokenService {
	return &TokenService{
		tokens:        tokens,
		users:         users,
		secret:        []byte(cfg.JWTSecret),
		confirmSecret: []byte(cfg.JWTSecret + "/email-confirmation"),
		issuer:        cfg.JWTIssuer,
		audience:      cfg.JWTAudience,
		accessTTL:     cfg.JWTAccessExpiry,
		refreshTTL:    cfg.JWTRefreshExpiry,
		confirmTTL:    cfg.EmailConfirmExpiry,
		now:           time.Now,
	}
}

// IssueAccessToken signs an HS256 JWT for the user.
func (s *TokenService) IssueAccessToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"jti":   uuid.NewString(),
		"email": user.Email,
		"name":  user.FullName,
		"iss":   s.issuer,
		"aud":   s.audience,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, exp, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry and returns the subject.
func (s *TokenService) ParseAccessToken(raw string) (uuid.UUID, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc(s.secret),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, ErrTokenExpiredOrRevoked
	}
	sub, _ := claims.GetSubject()
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrTokenExpiredOrRevoked
	}
	return id, nil
}

// IssueRefreshToken stores a new refresh token for the user and returns its value.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	raw, err := newRefreshValue()
	if err != nil {
		return "", time.Time{}, err
	}
	now := s.now().UTC()
	record := &models.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return raw, record.ExpiresAt, nil
}

// IssuePair mints an access token and a refresh token for a freshly authenticated user.
func (s *TokenService) IssuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             user,
	}, nil
}

// RotateRefreshToken consumes presented and returns a fresh pair. A token that is
// unknown, expired, revoked or already rotated yields ErrTokenExpiredOrRevoked.
func (s *TokenService) RotateRefreshToken(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, ErrTokenExpiredOrRevoked
	}
	raw, err := newRefreshValue()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	next, err := s.tokens.Rotate(ctx, hashToken(presented), hashToken(raw), now.Add(s.refreshTTL), now)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if next == nil {
		return nil, ErrTokenExpiredOrRevoked
	}

	user, err := s.users.FindByID(ctx, next.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		if _, err := s.tokens.Revoke(ctx, next.TokenHash, now); err != nil {
			slog.Error("failed to revoke token of missing user", "user_id", next.UserID.String(), "error", err)
		}
		return nil, ErrTokenExpiredOrRevoked
	}

	access, accessExp, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     raw,
		RefreshExpiresAt: next.ExpiresAt,
		User:             user,
	}, nil
}

// RevokeRefreshToken reports false when the token was already unusable.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, presented string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	return s.tokens.Revoke(ctx, hashToken(presented), s.now())
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	n, err := s.tokens.RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		return err
	}
	slog.Info("revoked refresh tokens", "user_id", userID.String(), "count", n)
	return nil
}

// IssueEmailConfirmationToken signs a token that is only accepted by ParseEmailConfirmationToken.
func (s *TokenService) IssueEmailConfirmationToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		Issuer:    s.issuer,
		Audience:  jwt.ClaimStrings{"email-confirmation"},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.confirmTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.confirmSecret)
}

func (s *TokenService) ParseEmailConfirmationToken(raw string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc(s.confirmSecret),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience("email-confirmation"),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, ErrTokenExpiredOrRevoked
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenExpiredOrRevoked
	}
	return id, nil
}

func (s *TokenService) keyFunc(key []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return key, nil
	}
}

func newRefreshValue() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
