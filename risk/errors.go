package risk

import (
	"errors"
	"fmt"
	"strings"
)

// ComputationError is the only error kind returned by the risk engine.
// Distinct failure causes are carried as data rather than as separate types.
type ComputationError struct {
	Op    string // "statistics", "historical_var", "monte_carlo_var", "allocate"
	Asset string // empty when the failure is not tied to one asset
	Cause string
	Err   error
}

func (e *ComputationError) Error() string {
	parts := make([]string, 0, 4)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Asset != "" {
		parts = append(parts, e.Asset)
	}
	if e.Cause != "" {
		parts = append(parts, e.Cause)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// IsComputationError reports whether any error in err's chain is a *ComputationError.
func IsComputationError(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}

// WithAsset returns a copy of err tagged with the asset identifier. Errors
// that are not a *ComputationError are wrapped into one.
func WithAsset(err error, asset string) error {
	if err == nil {
		return nil
	}
	var ce *ComputationError
	if errors.As(err, &ce) {
		cp := *ce
		cp.Asset = asset
		return &cp
	}
	return &ComputationError{Asset: asset, Cause: "unexpected failure", Err: err}
}

func computeErr(op, format string, args ...any) *ComputationError {
	return &ComputationError{Op: op, Cause: fmt.Sprintf(format, args...)}
}
