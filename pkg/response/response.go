package response

import (
	"net/http"

	"bezs/pkg/errors"
	"bezs/pkg/logger"
	"bezs/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// AuthenticatedKey 认证中间件写入上下文的标记，用于区分 401 和 403
const AuthenticatedKey = "authenticated"

// Response 统一返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// FromError 按业务错误类别返回对应错误码
func FromError(c *gin.Context, err error) {
	var message string
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	switch errors.KindOf(err) {
	case errors.KindValidation:
		BadRequest(c, message)
	case errors.KindUnauthorized:
		// 已有会话说明是权限不足
		if c.GetBool(AuthenticatedKey) {
			Forbidden(c, message)
		} else {
			Unauthorized(c, message)
		}
	case errors.KindNotFound:
		NotFound(c, message)
	case errors.KindConflict, errors.KindReferential:
		Conflict(c, message)
	default:
		logger.WithModule("http").WithField("path", c.FullPath()).Errorf("internal error: %v", err)
		ServerError(c, "服务器内部错误")
	}
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, errors.CodeConflict, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}
