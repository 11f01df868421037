// Package util provides small shared helpers used across the vaani service.
package util
