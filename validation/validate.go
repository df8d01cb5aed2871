// Package validation trims and validates action inputs against their struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"storefront-api/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	skuRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
			return skuRegex.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Struct trims every string reachable from v (which must be a pointer) and validates it.
// The first failing field is reported as a validation error.
func Struct(v any) error {
	Trim(v)
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperr.Validation("%s", message(fieldErrs[0], fieldErrs[0].Field()))
	}
	return apperr.Validation("Invalid input")
}

// Var validates a single value against a tag, naming it field in the message.
func Var(field string, value any, tag string) error {
	if err := instance().Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperr.Validation("%s", message(fieldErrs[0], field))
		}
		return apperr.Validation("%s is invalid", field)
	}
	return nil
}

func message(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required", "required_with", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Please enter a valid email address"
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color such as #1A2B3C", field)
	case "sku":
		return fmt.Sprintf("%s must be 3-32 upper-case letters, digits or dashes", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Trim walks v and trims whitespace around every settable string.
func Trim(v any) {
	trimValue(reflect.ValueOf(v))
}

func trimValue(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			trimValue(rv.Elem())
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() {
				trimValue(rv.Field(i))
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			trimValue(rv.Index(i))
		}
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(strings.TrimSpace(rv.String()))
		}
	}
}
