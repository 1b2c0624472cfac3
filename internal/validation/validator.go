// Package validation provides HTTP request validation utilities using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	domainerrors "github.com/relaychat/relay-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain. Error messages refer
// to fields by their JSON tag name, matching what clients actually sent.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Strip tag options like ",omitempty".
		if i := strings.IndexByte(name, ','); i >= 0 {
			return name[:i]
		}
		return name
	})

	return &Validator{v: v}
}

// Validate checks a struct's validate tags and returns a domain validation
// error listing every failing field, or nil.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	// The message carries field names so plain err.Error() output is
	// useful; the structured map rides along in Details for clients.
	fields := make([]string, 0, len(fieldErrors))
	for field, msg := range fieldErrors {
		fields = append(fields, field+" "+msg)
	}
	slices.Sort(fields)

	msg := "validation failed: " + strings.Join(fields, "; ")
	return domainerrors.ValidationWithDetails(msg, fieldErrors)
}

// tagMessages maps parameterless validate tags to their human messages.
var tagMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"uuid":     "must be a valid UUID",
}

func friendlyMessage(e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		return msg
	}

	switch e.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte", "gtefield":
		return "must be greater than or equal to " + e.Param()
	case "lte", "ltefield":
		return "must be less than or equal to " + e.Param()
	case "gt", "gtfield":
		return "must be greater than " + e.Param()
	case "lt", "ltfield":
		return "must be less than " + e.Param()
	default:
		return "is invalid"
	}
}
