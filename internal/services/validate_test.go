package services

import (
	"errors"
	"fmt"
	"testing"

	apperr "bezs/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSlugValidation(t *testing.T) {
	tests := []struct {
		slug string
		ok   bool
	}{
		{"ab", true},
		{"acme-clinic", true},
		{"team42", true},
		{"a", false},
		{"-acme", false},
		{"acme-", false},
		{"Acme", false},
		{"ac_me", false},
		{"ac me", false},
		{"a234567890123456789012345678901234567890123456789b", true},
		{"a2345678901234567890123456789012345678901234567890c", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := validateInput(OrganizationInput{Name: "Acme", Slug: tt.slug})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrValidation)
			}
		})
	}
}

func TestValidateInput_FieldMessages(t *testing.T) {
	err := validateInput(AppInput{Name: "", Slug: "ok-slug", Type: "plugin"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "type")
}

func TestRequireIDs(t *testing.T) {
	assert.NoError(t, requireIDs(idOf("role_id", 1), idOf("app_id", 2)))

	err := requireIDs(idOf("role_id", 1), idOf("app_id", 0), idOf("app_menu_item_id", 0))
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "app_id")
}

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "acme-clinic", normalizeSlug("  Acme-Clinic "))
}

func TestStoreErrorTranslation(t *testing.T) {
	assert.True(t, isDuplicate(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicate(fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, isDuplicate(errors.New("UNIQUE constraint failed: rbac.organization_id")))
	assert.False(t, isDuplicate(&pgconn.PgError{Code: "23503"}))

	assert.True(t, isForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isForeignKeyViolation(errors.New("connection reset")))

	assert.ErrorIs(t, insertError(gorm.ErrDuplicatedKey, "dup", "missing"), apperr.ErrConflict)
	assert.ErrorIs(t, insertError(gorm.ErrForeignKeyViolated, "dup", "missing"), apperr.ErrNotFound)
	assert.ErrorIs(t, insertError(errors.New("disk full"), "dup", "missing"), apperr.ErrInternal)
	assert.NoError(t, insertError(nil, "dup", "missing"))

	assert.ErrorIs(t, deleteError(gorm.ErrForeignKeyViolated, "referenced"), apperr.ErrReferential)
	assert.ErrorIs(t, lookupError(gorm.ErrRecordNotFound, "missing"), apperr.ErrNotFound)

	// 已分类的错误原样透传
	notFound := apperr.NotFound("角色不存在")
	assert.Same(t, notFound, wrapStoreError(notFound, "ignored"))
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(wrapStoreError(errors.New("boom"), "查询失败")))
}
