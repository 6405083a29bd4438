package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, used with errors.Is. ConfigError and ValidationError
// wrap these so callers can branch on the class without inspecting details.
var (
	// ErrScheduleNotFound is returned when no rate schedule exists for the
	// requested fiscal year. There is no fallback schedule.
	ErrScheduleNotFound = errors.New("rate schedule not found")

	// ErrUnknownCountry is returned when the residence country is absent or
	// not covered by a tax treaty rule. There is no implicit Monaco default.
	ErrUnknownCountry = errors.New("unknown residence country")

	// ErrNegativeBalance is returned when a leave transition would produce a
	// negative remaining balance. It is never silently clamped.
	ErrNegativeBalance = errors.New("negative leave balance")

	// ErrInvalidInput is returned for malformed employee data: negative
	// hours, negative salary, missing matricule.
	ErrInvalidInput = errors.New("invalid employee input")
)

// ConfigError reports unusable reference data. It is fatal to the single
// employee-period calculation but never aborts a batch.
type ConfigError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Op, e.Detail)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError reports malformed per-record data with field-level detail.
type ValidationError struct {
	Matricule string
	Field     string
	Detail    string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: field %q: %s", e.Matricule, e.Field, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
