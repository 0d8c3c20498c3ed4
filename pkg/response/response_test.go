package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bezs/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func renderError(t *testing.T, err error, authenticated bool) Response {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if authenticated {
		c.Set(AuthenticatedKey, true)
	}

	FromError(c, err)

	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		authenticated bool
		code          int
		message       string
	}{
		{"validation", errors.Validation("name 不能为空"), true, errors.CodeInvalidParam, "name 不能为空"},
		{"no session", errors.Unauthorized("请先登录"), false, errors.CodeUnauthorized, "请先登录"},
		{"not admin", errors.Unauthorized("需要平台管理员权限"), true, errors.CodeForbidden, "需要平台管理员权限"},
		{"not found", errors.NotFound("角色不存在"), true, errors.CodeNotFound, "角色不存在"},
		{"conflict", errors.Conflict("组织标识已存在"), true, errors.CodeConflict, "组织标识已存在"},
		{"referential", errors.Referential("仍被引用"), true, errors.CodeConflict, "仍被引用"},
		{"internal", errors.Internal("查询失败", stderrors.New("dial tcp: refused")), true, errors.CodeServerError, "服务器内部错误"},
		{"plain error", stderrors.New("boom"), true, errors.CodeServerError, "服务器内部错误"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := renderError(t, tt.err, tt.authenticated)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"id": 1})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
}
