// Package middleware provides optional update-cycle interceptors:
// Prometheus metrics and OpenTelemetry tracing. Interceptors are installed
// on an engine with engine.WithInterceptors and wrap every diff/patch
// cycle of every tree mounted on it.
package middleware
