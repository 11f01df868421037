// Package textnorm normalizes transcripts for Indic languages.
//
// Normalization keeps the runes of the language's script block plus basic
// Latin and digits, strips stray punctuation and control characters, and
// collapses whitespace. It is applied only when a request asks for it.
package textnorm
