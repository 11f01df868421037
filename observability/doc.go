// Package observability provides OpenTelemetry tracing and metrics for
// the transcription service.
//
// Setup is opt-in: when no OTLP endpoint is configured the package
// installs nothing and the engine's observer hook stays nil.
//
//	shutdown, err := observability.Setup(ctx, cfg)
//	defer shutdown(ctx)
//
//	inst, err := observability.NewInstruments(observability.Meter("vaani"))
//	engine.SetObserver(inst)
package observability
