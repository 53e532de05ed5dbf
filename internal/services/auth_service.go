package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"net/url"
	"strings"

	"github.com/callcleaner/backend/internal/config"
	"github.com/callcleaner/backend/internal/models"
	"github.com/callcleaner/backend/internal/repository"
	"github.com/google/uuid"
)

const minPasswordLength = 8

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type AuthService struct {
	users  UserStore
	tokens *TokenService
	mailer Mailer
	codes  CodeStore
	cfg    *config.Config
}

func NewAuthService(users UserStore, tokens *TokenService, mailer Mailer, codes CodeStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		codes:  codes,
		cfg:    cfg,
	}
}

// Register creates the account with default settings and mails a confirmation link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, validationError("full name is required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user registered", "user_id", user.ID.String())

	s.sendConfirmation(ctx, user)
	return user, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) {
	token, err := s.tokens.IssueEmailConfirmationToken(user)
	if err != nil {
		slog.Error("failed to issue confirmation token", "user_id", user.ID.String(), "error", err)
		return
	}
	link := fmt.Sprintf("%s/api/auth/confirm-email?userId=%s&token=%s",
		strings.TrimRight(s.cfg.PublicBaseURL, "/"), user.ID, url.QueryEscape(token))

	body, err := renderMail(confirmEmailTmpl, map[string]string{
		"Name":   user.FullName,
		"Link":   link,
		"Expiry": s.cfg.EmailConfirmExpiry.String(),
	})
	if err == nil {
		err = s.mailer.Send(ctx, user.Email, "Confirm your CallCleaner account", body)
	}
	if err != nil {
		slog.Error("failed to send confirmation email", "user_id", user.ID.String(), "error", err)
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.tokens.IssuePair(ctx, user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, validationError("refresh token is required")
	}
	return s.tokens.RotateRefreshToken(ctx, refreshToken)
}

// Logout revokes the refresh token; one that is already unusable yields ErrTokenExpiredOrRevoked.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return validationError("refresh token is required")
	}
	revoked, err := s.tokens.RevokeRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrTokenExpiredOrRevoked
	}
	return nil
}

func (s *AuthService) ConfirmEmail(ctx context.Context, rawUserID, token string) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}
	if token == "" {
		return validationError("token is required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return notFoundError("user not found")
	}

	subject, err := s.tokens.ParseEmailConfirmationToken(token)
	if err != nil || subject != user.ID {
		return validationError("confirmation link is invalid or expired")
	}
	if user.EmailConfirmed {
		return nil
	}
	user.EmailConfirmed = true
	return s.users.Update(ctx, user)
}

// maxResetAttempts wrong codes burn the outstanding reset code.
const maxResetAttempts = 5

func resetCodeKey(userID uuid.UUID) string {
	return "password_reset:" + userID.String()
}

func resetAttemptsKey(userID uuid.UUID) string {
	return "password_reset_attempts:" + userID.String()
}

// ForgotPassword mails a 6-digit code that stays valid for the configured window.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return notFoundError("no account with this email")
	}

	code, err := newResetCode()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, resetCodeKey(user.ID), code, s.cfg.ResetCodeExpiry); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, resetAttemptsKey(user.ID)); err != nil {
		return err
	}

	body, err := renderMail(resetCodeTmpl, map[string]string{
		"Name":   user.FullName,
		"Code":   code,
		"Expiry": s.cfg.ResetCodeExpiry.String(),
	})
	if err == nil {
		err = s.mailer.Send(ctx, user.Email, "Your CallCleaner password reset code", body)
	}
	if err != nil {
		slog.Error("failed to send reset code", "user_id", user.ID.String(), "error", err)
	}
	return nil
}

// ResetPassword sets a new password when code matches and signs the user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if len(newPassword) < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return notFoundError("no account with this email")
	}

	key := resetCodeKey(user.ID)
	stored, err := s.codes.Get(ctx, key)
	if err != nil {
		return err
	}
	if stored == "" {
		return validationError("reset code expired or invalid")
	}
	attemptsKey := resetAttemptsKey(user.ID)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		attempts, err := s.codes.Incr(ctx, attemptsKey, s.cfg.ResetCodeExpiry)
		if err != nil {
			return err
		}
		if attempts >= maxResetAttempts {
			if err := s.codes.Delete(ctx, key, attemptsKey); err != nil {
				return err
			}
			slog.Warn("reset code burned after repeated misses", "user_id", user.ID.String())
			return validationError("too many invalid attempts, request a new reset code")
		}
		return validationError("reset code is invalid")
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, key, attemptsKey); err != nil {
		slog.Warn("failed to delete used reset code", "user_id", user.ID.String(), "error", err)
	}
	return s.tokens.RevokeAllForUser(ctx, user.ID)
}

// GetUser returns an active account.
func (s *AuthService) GetUser(ctx context.Context, rawUserID string) (*models.User, error) {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, notFoundError("user not found")
	}
	return user, nil
}

// UpdateProfile renames the user and, when newPassword is set, changes the password
// and revokes every refresh token.
func (s *AuthService) UpdateProfile(ctx context.Context, rawUserID, fullName, newPassword string) (*models.User, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return nil, validationError("name is required")
	}
	if newPassword != "" && len(newPassword) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	user, err := s.GetUser(ctx, rawUserID)
	if err != nil {
		return nil, err
	}

	user.FullName = name
	if newPassword != "" {
		hash, err := HashPassword(newPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if newPassword != "" {
		if err := s.tokens.RevokeAllForUser(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// DeleteAccount removes the user and their private data after re-checking the password.
func (s *AuthService) DeleteAccount(ctx context.Context, rawUserID, password string) error {
	if password == "" {
		return validationError("password is required")
	}
	user, err := s.GetUser(ctx, rawUserID)
	if err != nil {
		return err
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := s.users.DeleteWithData(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	slog.Info("account deleted", "user_id", user.ID.String())
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("email is invalid")
	}
	return email, nil
}

func newResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

