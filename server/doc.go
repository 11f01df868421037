// Package server provides the vaani HTTP server: Gin routing with
// HTTP/2 cleartext support and a standard middleware stack applied at
// the handler level so it covers every mounted handler.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limits for audio uploads
//   - RequestLogger: request/response logging with duration tracking
//   - RateLimit: per-client sliding-window rate limiting (Gin-level)
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /info: service version and uptime
//   - /metrics: runtime memory and goroutine metrics
//
// The server integrates with the component registry for lifecycle
// management via NewComponent.
package server
