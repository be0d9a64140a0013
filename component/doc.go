// Package component manages the lifecycle of long-lived pieces of an apikit
// process: telemetry providers and clients. Components start in
// registration order and stop in reverse.
package component
