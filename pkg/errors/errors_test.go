package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("map user: %w", Conflict("该用户在此组织中已拥有该角色"))

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAppError_Message(t *testing.T) {
	assert.Equal(t, "角色不存在", NotFound("角色不存在").Error())
	assert.Equal(t, "写入失败: disk full", Internal("写入失败", stderrors.New("disk full")).Error())
	assert.Equal(t, "internal: boom", (&AppError{Kind: KindInternal, Err: stderrors.New("boom")}).Error())
	assert.Equal(t, "referential", ErrReferential.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal("查询失败", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("plain")))
	assert.Equal(t, KindUnauthorized, KindOf(Unauthorized("请先登录")))
	assert.Equal(t, KindValidation, KindOf(Validation("name 不能为空")))
	assert.Equal(t, KindReferential, KindOf(Referential("仍被引用")))
}
