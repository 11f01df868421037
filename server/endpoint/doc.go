// Package endpoint provides the built-in operational endpoints mounted
// by the server: health aggregation, build info, and runtime metrics.
//
// The health endpoint only reads component state; it never triggers
// model loads or backend calls.
package endpoint
