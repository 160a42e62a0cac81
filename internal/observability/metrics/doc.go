// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the monitor's metrics:
//   - Sweep metrics (duration, last success, new entries)
//   - Feed metrics (fetch results, articles fetched)
//   - Delivery metrics (per channel and message kind)
//
// All metrics are registered with the Prometheus default registry. The monitor
// is a batch job, so after each sweep the registry is pushed to a Pushgateway
// when one is configured.
//
// Example usage:
//
//	start := time.Now()
//	report, err := runner.RunOnce(ctx, sources)
//	metrics.RecordRun(time.Since(start), err == nil)
//	_ = metrics.Push(ctx, pushgatewayURL, "rss_monitor")
package metrics
