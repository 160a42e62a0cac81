// Package observability groups the monitor's operational signals.
//
// Subpackages:
//   - logging: slog setup and context propagation (run_id / request_id tagging)
//   - metrics: Prometheus counters for sweeps, pushed to a Pushgateway after each run
package observability
