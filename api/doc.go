// Package api mounts the public transcription endpoints on the Gin
// engine: single and batch transcription, language discovery, and
// service statistics.
//
// Handlers validate uploads before any model work happens, spool them
// to the temp store for the lifetime of the request, and translate
// engine errors into structured JSON via the server package.
package api
