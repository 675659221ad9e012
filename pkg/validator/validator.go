// Package validator checks request DTOs with go-playground/validator and
// renders failures as one message per field, keyed by the JSON field name.
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// clock: HH:MM or HH:MM:SS on a 24 hour clock
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	// isodate: a calendar date in YYYY-MM-DD form
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// ValidateVar checks a single value against tag, for inputs that do not
// arrive in a struct.
func (cv *CustomValidator) ValidateVar(value any, tag string) error {
	return cv.validator.Var(value, tag)
}

// FormatValidationErrors renders err as sorted "field message" strings.
// Errors that did not come from the validator are returned as a single entry.
func (cv *CustomValidator) FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "email":
			out = append(out, field+" must be a valid email address")
		case "min":
			out = append(out, field+" must be at least "+e.Param())
		case "max":
			out = append(out, field+" must be at most "+e.Param())
		case "gt":
			out = append(out, field+" must be greater than "+e.Param())
		case "gte":
			out = append(out, field+" must be greater than or equal to "+e.Param())
		case "oneof":
			out = append(out, field+" must be one of "+e.Param())
		case "uuid", "uuid4":
			out = append(out, field+" must be a valid UUID")
		case "clock":
			out = append(out, field+" must be a time in HH:MM form")
		case "isodate":
			out = append(out, field+" must be a date in YYYY-MM-DD form")
		default:
			out = append(out, field+" is invalid")
		}
	}
	sort.Strings(out)
	return out
}
