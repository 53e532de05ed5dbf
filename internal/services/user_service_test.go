package services

import (
	"context"
	"testing"

	"github.com/callcleaner/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_IsAdmin(t *testing.T) {
	e := newTestEnv(t)
	svc := NewUserService(e.users)
	ctx := context.Background()
	listed := []string{"Admin@example.com"}

	u := e.createUser(t, "admin@example.com", "Password1")
	assert.False(t, svc.IsAdmin(ctx, u.ID, listed), "unconfirmed email must not grant admin")

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", u.ID).Update("email_confirmed", true).Error)
	assert.True(t, svc.IsAdmin(ctx, u.ID, listed))
	assert.False(t, svc.IsAdmin(ctx, u.ID, nil))

	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
	assert.False(t, svc.IsAdmin(ctx, u.ID, listed))

	r := e.createUser(t, "ops@example.com", "Password1")
	require.NoError(t, e.db.Model(&models.User{}).Where("id = ?", r.ID).Update("role", models.RoleAdmin).Error)
	assert.True(t, svc.IsAdmin(ctx, r.ID, nil))

	assert.False(t, svc.IsAdmin(ctx, uuid.New(), listed))
}
