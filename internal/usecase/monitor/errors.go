// Package monitor implements a sweep over the configured feeds: fetch each
// source, skip articles already delivered, deliver the rest, and report the
// entries that became seen. Persisting them is left to the Runner.
package monitor

import "errors"

// Sentinel errors for monitor use case operations.
var (
	// ErrSourcePanicked marks a source whose processing panicked and was recovered.
	ErrSourcePanicked = errors.New("source processing panicked")
)
