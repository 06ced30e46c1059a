// Package telemetry wires the gateway's observability: an OpenTelemetry
// tracer provider exporting over OTLP/gRPC, and Prometheus metrics for the
// HTTP surface and LLM dispatch.
package telemetry
