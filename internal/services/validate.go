package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validateFields checks the `validate` tags of fields and converts failures
// into a ValidationError keyed by the json field name.
func validateFields(v *validator.Validate, model string, fields any) error {
	err := v.Struct(fields)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate %s: %w", model, err)
	}

	out := &ValidationError{Model: model, Fields: make(map[string]FieldError, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = FieldError{
			Kind:    fe.Tag(),
			Message: fmt.Sprintf("Path `%s` is required.", fe.Field()),
		}
	}
	return out
}

// newValidator reports field names by their json tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
