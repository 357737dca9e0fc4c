// Package operation provides the shared framework for Conductor operations
// backed by the Miniflux integration.
//
// The package defines:
//   - Connector, the contract every integration implements
//   - Result, the uniform output of a single operation call
//   - Error, a classified error type carrying a user-facing suggestion
//   - MetricsCollector, Prometheus instrumentation for executed requests
//
// Integrations live under internal/integration and talk to the network
// through internal/operation/transport.
package operation
