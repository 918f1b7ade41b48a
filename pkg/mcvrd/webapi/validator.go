package webapi

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/materials-commons/mcvr/pkg/vr"
)

// RequestValidator is the echo Validator. Field names in errors are the
// query parameter names.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err
	}

	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return vr.NewError(vr.KindInvalidParameter, fe.Field(), "Parameter '%s' is required.", fe.Field())
	default:
		return vr.NewError(vr.KindInvalidParameter, fe.Field(), "Invalid value for %s: %v", fe.Field(), fe.Value())
	}
}
