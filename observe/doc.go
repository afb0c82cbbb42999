// Package observe provides tracing, metrics and structured logging for
// upstream probes.
//
// A Middleware wraps each probe so it runs inside a span named
// ltdstatus.probe.<stage>, is counted and timed, and is logged with the
// product it belongs to. Exporters are selected by name through the
// exporters subpackage.
package observe
