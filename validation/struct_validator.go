package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/liquidkit/errors"
)

// MaxSlot is the highest numbered deck slot. Slot 12 holds the fixed trash.
const MaxSlot = 11

var wellPattern = regexp.MustCompile(`^[A-P]([1-9]|1[0-9]|2[0-4])$`)

var (
	validate *validator.Validate
	once     sync.Once
)

// IsWellName reports whether s is a syntactically valid well name.
func IsWellName(s string) bool {
	return wellPattern.MatchString(s)
}

// IsSlot reports whether n is a usable deck slot.
func IsSlot(n int) bool {
	return n >= 1 && n <= MaxSlot
}

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Prefer yaml, then json tag names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"yaml", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return toSnakeCase(fld.Name)
		})

		_ = validate.RegisterValidation("well", func(fl validator.FieldLevel) bool {
			return IsWellName(fl.Field().String())
		})
		_ = validate.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
			return IsSlot(int(fl.Field().Int()))
		})
	})
	return validate
}

// Validate validates a struct using struct tags.
// Uses tags like `validate:"required,well"` or `validate:"gt=0"`.
func Validate(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))

	for _, e := range validationErrors {
		fieldName := fieldPath(e)
		message := formatValidationError(e)
		fieldErrors = append(fieldErrors, FieldError{
			Field:   fieldName,
			Message: message,
		})
		messages = append(messages, fieldName+": "+message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": fieldErrors,
	}
	return appErr
}

// fieldPath drops the root struct name from the namespace,
// so Layout.labware[2].slot becomes labware[2].slot.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "well":
		return "must be a well name like A1 (got " + stringValue(e) + ")"
	case "slot":
		return "must be a deck slot between 1 and 11"
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "unique":
		return "must not contain duplicates"
	case "dive":
		return "has an invalid element"
	default:
		return "is invalid"
	}
}

func stringValue(e validator.FieldError) string {
	if s, ok := e.Value().(string); ok {
		return `"` + s + `"`
	}
	return "non-string"
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
