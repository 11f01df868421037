// Package tempstore manages request-scoped temp files for uploaded audio.
//
// Every saved file is tracked until released; handlers release on all exit
// paths, and the component's Stop sweeps anything left behind so an unclean
// request cannot leak disk.
package tempstore
