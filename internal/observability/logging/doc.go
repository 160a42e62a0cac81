// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package. Every sweep gets a
// logger tagged with a run_id that travels through context to the fetcher,
// the notifiers and the state adapters.
//
// Example usage:
//
//	logger := logging.NewLogger("json", "info")
//	ctx := logging.WithLogger(ctx, logging.WithRunID(logger, runID))
//	logging.FromContext(ctx).Info("sweep started")
package logging
