package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/washhub/carwash-web/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in errors are taken from the form tag.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return domain.ValidPhone(fl.Field().String())
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface. The first failing field
// is returned as a *domain.ValidationError so forms show it inline.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return domain.Invalid(ve[0].Field(), fieldError(ve[0]))
		}
		return err
	}
	return nil
}

// fieldError converts a single FieldError into a translation key.
func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "validation.required"
	case "email":
		return "validation.email"
	case "phone":
		return "validation.phone"
	case "min":
		if fe.Field() == "password" {
			return "validation.passwordTooShort"
		}
		return "validation.required"
	case "oneof":
		return "validation." + fe.Field()
	case "datetime":
		return "validation.date"
	case "gt", "gte":
		return "validation." + fe.Field()
	default:
		return "validation.required"
	}
}
