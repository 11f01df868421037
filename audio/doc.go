// Package audio validates and decodes uploaded audio before it reaches a
// transcription backend.
//
// WAV uploads are decoded to 16 kHz mono float32 and checked against the
// configured duration bounds. Compressed containers (mp3, ogg, flac, m4a,
// webm) are sniffed and size-checked here and decoded by the backend
// sidecars, which report the audio duration back with the transcript.
package audio
