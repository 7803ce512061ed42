package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput marks user-correctable field errors.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration marks a broken static table or an unsupported role.
	ErrConfiguration = errors.New("configuration error")
	// ErrMapping marks a present value that failed its required coercion.
	ErrMapping  = errors.New("mapping error")
	ErrNotFound = errors.New("not found")
)

// ValidationError is a per-field message shown inline next to the input.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Message }

func (e ValidationError) Is(target error) bool { return target == ErrInvalidInput }

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool { return target == ErrInvalidInput }

// ByField returns the errors keyed by field name.
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.Field] = e.Message
	}
	return out
}

// ConfigurationError reports a bad mapping/placement table entry or an
// unrecognised agent role. It indicates a bug in static configuration.
type ConfigurationError struct {
	Table  string
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("configuration error in %s: %q: %s", e.Table, e.Key, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MappingError reports a value that could not be coerced for its target field.
type MappingError struct {
	SourceKey string
	Target    string
	Raw       any
	Reason    string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("mapping %s -> %s: %s (raw %q)", e.SourceKey, e.Target, e.Reason, fmt.Sprint(e.Raw))
}

func (e *MappingError) Is(target error) bool { return target == ErrMapping }
