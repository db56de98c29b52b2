package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and reports the first failure
// as a VALIDATION_ERROR.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("Invalid request")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return models.NewValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "email":
		return models.NewValidationError(fmt.Sprintf("%s must be a valid email address", fe.Field()))
	case "max":
		return models.NewValidationError(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	default:
		return models.NewValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
