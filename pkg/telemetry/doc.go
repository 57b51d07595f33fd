// Package telemetry groups tessera's observability packages.
//
//   - logging: log/slog setup with optional redaction
//   - metrics: Prometheus metrics for validation runs
//   - health: liveness and readiness endpoints for watch mode
//
// Commands configure all three from config.TelemetryConfig; library packages
// only ever log through slog.Default().
package telemetry
