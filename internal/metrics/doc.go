// Package metrics collects refresh cycle statistics for the status board.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Refresh cycles started, per trigger (startup, manual, timer)
//   - Successful, failed and discarded cycles
//   - Cycle durations with percentile calculations (P50, P95, P99)
//   - Per-service reachability, availability ratio and transitions
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the refresh path. Emit never blocks; events are dropped when the
// buffer is full.
//
// Example usage:
//
//	collector := metrics.NewCollector(256, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventServiceStatus,
//		Service:    "database",
//		Accessible: true,
//	})
//
//	snapshot := collector.Snapshot()
//
// Counters are also mirrored into a private Prometheus registry served by
// PrometheusHandler.
package metrics
