package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers branch with errors.Is.
var (
	// ErrSourceUnavailable: a universe source failed or returned out-of-band data
	ErrSourceUnavailable = errors.New("universe source unavailable")

	// ErrUniverseExhausted: every source in the chain failed
	ErrUniverseExhausted = fmt.Errorf("universe chain exhausted: %w", ErrSourceUnavailable)

	// ErrSnapshotUnavailable: per-ticker data fetch failed
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")

	// ErrInsufficientHistory: an indicator window exceeds the available data
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrConfiguration: invalid mode/parameter combination
	ErrConfiguration = errors.New("invalid configuration")
)

// SourceError wraps a universe source failure
type SourceError struct {
	Source SourceKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// SnapshotError wraps a per-ticker fetch failure
type SnapshotError struct {
	Ticker string
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Ticker, e.Err)
}

func (e *SnapshotError) Unwrap() []error {
	return []error{ErrSnapshotUnavailable, e.Err}
}

// ConfigError reports one invalid parameter
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigError is shorthand for &ConfigError{...}
func NewConfigError(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
