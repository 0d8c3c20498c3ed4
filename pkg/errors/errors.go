package errors

import (
	stderrors "errors"
	"fmt"
)

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误分类 ==========

// Kind 错误类别
type Kind string

const (
	KindUnauthorized Kind = "unauthorized" // 未登录或非平台管理员
	KindNotFound     Kind = "not_found"    // 实体或关联记录不存在
	KindConflict     Kind = "conflict"     // 唯一约束冲突
	KindReferential  Kind = "referential"  // 仍被依赖记录引用
	KindValidation   Kind = "validation"   // 参数不合法
	KindInternal     Kind = "internal"     // 存储或其他基础设施故障
)

// 哨兵错误，配合 errors.Is 使用
var (
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrReferential  = &AppError{Kind: KindReferential}
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrInternal     = &AppError{Kind: KindInternal}
)

// AppError 业务错误
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同类别即视为匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// ========== 构造方法 ==========

func Unauthorized(message string) error {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) error {
	return &AppError{Kind: KindConflict, Message: message}
}

func Referential(message string) error {
	return &AppError{Kind: KindReferential, Message: message}
}

func Validation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

// Internal 包装未知的基础设施错误
func Internal(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf 返回错误类别，非 AppError 一律视为内部错误
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is 同标准库 errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As 同标准库 errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
