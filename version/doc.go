// Package version exposes build metadata for the vaani binary.
//
// Version, git commit, branch, and build time are injected at compile
// time via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/vaani/version.Version=1.2.0"
//
// When ldflags are absent the package falls back to runtime/debug build
// info, so binaries built with a plain `go build` still report commit
// and dirty state.
package version
