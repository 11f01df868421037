// Package resilience provides the bulkhead used to bound concurrent
// inference dispatch. Each transcription attempt takes a slot before
// calling a backend, so a burst of requests cannot overload the model
// sidecars; callers queue up to a configurable wait before being rejected.
package resilience
