// Package sources provides the source connectors that gather public
// signals about a handle.
package sources

import (
	"errors"
	"fmt"
	"time"

	"github.com/BAWSA3/brandos/internal/types"
)

// Unavailable indicates a connector could not produce signals for a run.
// It is a value the conductor collects, never a crash: the run continues
// with the remaining sources.
type Unavailable struct {
	Source types.SourceKind
	Cause  error
}

func (e *Unavailable) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Cause)
	}
	return fmt.Sprintf("source %s unavailable", e.Source)
}

func (e *Unavailable) Unwrap() error {
	return e.Cause
}

// RateLimitError indicates a connector exhausted its request budget.
// The conductor treats it exactly like Unavailable.
type RateLimitError struct {
	Source     types.SourceKind
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("source %s rate limited, retry after %s", e.Source, e.RetryAfter)
}

// IsUnavailable reports whether err is a recoverable connector failure.
func IsUnavailable(err error) bool {
	var unavailable *Unavailable
	var limited *RateLimitError
	return errors.As(err, &unavailable) || errors.As(err, &limited)
}

// asUnavailable wraps an arbitrary upstream error into the connector
// failure value for the given source.
func asUnavailable(source types.SourceKind, cause error) error {
	return &Unavailable{Source: source, Cause: cause}
}
