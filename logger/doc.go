// Package logger provides structured logging for the vaani service
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("engine")
//	log.Info("transcription complete", logger.Fields(
//	    logger.FieldLanguage, "hi",
//	    logger.FieldBackend, "conformer-onnx"))
package logger
