package validation

import (
	"reflect"
	"time"

	cerrors "github.com/vnykmshr/chrono/pkg/common/errors"
)

// ValidatePositiveDuration validates that a duration is strictly positive.
func ValidatePositiveDuration(module, field string, value time.Duration) error {
	if value <= 0 {
		return cerrors.NewValidationError(module, field, value, "must be positive").
			WithHint("duration must be greater than 0")
	}
	return nil
}

// ValidateNonNegative validates that an integer value is non-negative (>= 0).
// Returns a ValidationError if the value is negative.
func ValidateNonNegative(module, field string, value int) error {
	if value < 0 {
		return cerrors.NewValidationError(module, field, value, "cannot be negative").
			WithHint("use 0 for the default or a positive value")
	}
	return nil
}

// ValidateNotNil validates that a value is not nil. Typed nils (a nil func or
// pointer stored in an interface) are treated as nil.
func ValidateNotNil(module, field string, value interface{}) error {
	if isNil(value) {
		return cerrors.NewValidationError(module, field, nil, "cannot be nil").
			WithHint("provide a valid " + field)
	}
	return nil
}

// ValidateNotEmpty validates that a string value is not empty.
// Returns a ValidationError if the string is empty.
func ValidateNotEmpty(module, field string, value string) error {
	if value == "" {
		return cerrors.NewValidationError(module, field, value, "cannot be empty").
			WithHint("provide a non-empty " + field)
	}
	return nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
