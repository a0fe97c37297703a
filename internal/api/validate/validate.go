// Package validate wraps go-playground/validator for request payloads.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request struct by its `validate` tags and returns a
// single readable error naming every failed field.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", ve.Field(), ve.Tag()))
	}
	return fmt.Errorf("validation: %s", strings.Join(parts, "; "))
}

// Var validates a single value against a tag expression.
func Var(val interface{}, tag string) error {
	return v.Var(val, tag)
}
