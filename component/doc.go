// Package component defines the lifecycle interface shared by the vaani
// service's long-lived parts (HTTP server, model registry, temp audio
// store, observability providers).
//
// Components are registered in dependency order at startup; the registry
// starts them in order and stops them in reverse so the HTTP server drains
// before the model cache is torn down.
package component
