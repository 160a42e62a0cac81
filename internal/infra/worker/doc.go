// Package worker runs the monitor as a long-lived process: a cron scheduler
// that never overlaps sweeps, and an HTTP server exposing liveness, readiness,
// channel health and Prometheus metrics.
package worker
