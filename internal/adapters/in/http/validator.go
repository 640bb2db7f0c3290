package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"parcelhub/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
)

// BodyValidator adapts validator/v10 to echo.Validator. Failures come back
// as domain errors so the error handler reports their kind.
type BodyValidator struct {
	validate *validator.Validate
}

func NewBodyValidator() *BodyValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &BodyValidator{validate: v}
}

func (v *BodyValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}

	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return errs.NewValueIsRequiredError(fe.Field())
	}
	return errs.NewValueIsInvalidErrorWithCause(fe.Field(), fmt.Errorf("failed %q rule", fe.Tag()))
}
