package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	apperr "bezs/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,48}[a-z0-9]$`)
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// slug：小写字母、数字、连字符，2-50位，首尾不能是连字符
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// validateInput 结构体标签校验，失败返回 ValidationError
func validateInput(input interface{}) error {
	err := getValidator().Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.Validation(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 不能为空", field)
	case "min", "max":
		return fmt.Sprintf("%s 长度必须满足 %s=%s", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 只能是 %s", field, fe.Param())
	case "slug":
		return fmt.Sprintf("%s 只能包含小写字母、数字和连字符，长度2-50", field)
	case "email":
		return fmt.Sprintf("%s 格式错误", field)
	default:
		return fmt.Sprintf("%s 校验失败(%s)", field, fe.Tag())
	}
}

type idField struct {
	name string
	id   uint
}

func idOf(name string, id uint) idField {
	return idField{name: name, id: id}
}

// requireIDs 主键参数不能为0
func requireIDs(fields ...idField) error {
	for _, f := range fields {
		if f.id == 0 {
			return apperr.Validation(fmt.Sprintf("%s 不能为空", f.name))
		}
	}
	return nil
}

// normalizeSlug slug 统一小写存储
func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
