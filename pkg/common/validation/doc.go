// Package validation provides common validation utilities for configuration
// parameters and task arguments across the chrono library.
//
// Every failure is reported as a *errors.ValidationError so callers can
// classify it with errors.IsValidationError.
package validation
