package services

import (
	"testing"

	"bezs/internal/models"
	apperr "bezs/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestAccessGuard_RequireAuthenticated(t *testing.T) {
	g := NewAccessGuard()

	tests := []struct {
		name   string
		caller Caller
		ok     bool
	}{
		{"anonymous", Anonymous(), false},
		{"authenticated without id", Caller{Authenticated: true, Role: models.PlatformRoleUser}, false},
		{"id without session", Caller{UserID: 7, Role: models.PlatformRoleAdmin}, false},
		{"user", Caller{UserID: 7, Role: models.PlatformRoleUser, Authenticated: true}, true},
		{"guest", Caller{UserID: 8, Role: models.PlatformRoleGuest, Authenticated: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.RequireAuthenticated(tt.caller)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrUnauthorized)
		})
	}
}

func TestAccessGuard_RequireAdmin(t *testing.T) {
	g := NewAccessGuard()

	assert.NoError(t, g.RequireAdmin(Caller{UserID: 1, Role: models.PlatformRoleAdmin, Authenticated: true}))
	assert.ErrorIs(t, g.RequireAdmin(Caller{UserID: 2, Role: models.PlatformRoleUser, Authenticated: true}), apperr.ErrUnauthorized)
	assert.ErrorIs(t, g.RequireAdmin(Caller{UserID: 3, Role: models.PlatformRoleGuest, Authenticated: true}), apperr.ErrUnauthorized)
	assert.ErrorIs(t, g.RequireAdmin(Anonymous()), apperr.ErrUnauthorized)
	// 角色名区分大小写
	assert.ErrorIs(t, g.RequireAdmin(Caller{UserID: 4, Role: "Admin", Authenticated: true}), apperr.ErrUnauthorized)
}

func TestAccessGuard_RequireSelfOrAdmin(t *testing.T) {
	g := NewAccessGuard()
	user := Caller{UserID: 10, Role: models.PlatformRoleUser, Authenticated: true}
	admin := Caller{UserID: 1, Role: models.PlatformRoleAdmin, Authenticated: true}

	assert.NoError(t, g.RequireSelfOrAdmin(user, 10))
	assert.ErrorIs(t, g.RequireSelfOrAdmin(user, 11), apperr.ErrUnauthorized)
	assert.NoError(t, g.RequireSelfOrAdmin(admin, 11))
	assert.ErrorIs(t, g.RequireSelfOrAdmin(Anonymous(), 0), apperr.ErrUnauthorized)
}

func TestAccessGuard_IsSuperuser(t *testing.T) {
	g := NewAccessGuard()

	assert.True(t, g.IsSuperuser(Caller{UserID: 1, Role: models.PlatformRoleAdmin, Authenticated: true}))
	assert.False(t, g.IsSuperuser(Caller{UserID: 1, Role: models.PlatformRoleAdmin}))
	assert.False(t, g.IsSuperuser(Caller{UserID: 2, Role: models.PlatformRoleUser, Authenticated: true}))
}

func TestNewCaller(t *testing.T) {
	user := &models.User{BaseModel: models.BaseModel{ID: 42}, Role: models.PlatformRoleGuest}
	c := NewCaller(user)

	assert.Equal(t, uint(42), c.UserID)
	assert.Equal(t, models.PlatformRoleGuest, c.Role)
	assert.True(t, c.Authenticated)
}
