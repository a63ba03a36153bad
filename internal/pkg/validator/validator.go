package validator

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// gidPattern - глобальный идентификатор остановки DHID, например de:14612:28
var gidPattern = regexp.MustCompile(`^[a-z]{2}:\d+:\d+(:\d+)*$`)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("stopgid", func(fl validator.FieldLevel) bool {
		return gidPattern.MatchString(fl.Field().String())
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// FieldFailed сообщает, не прошло ли поле field валидацию
func FieldFailed(err error, field string) bool {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return false
	}
	for _, fe := range fieldErrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}

// IsStopGID проверяет формат глобального идентификатора остановки
func IsStopGID(gid string) bool {
	return gidPattern.MatchString(gid)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
