// Package errors provides structured error types for the Reflow engine.
//
// Each failure kind has a stable code (E001, E020, ...) registered with a
// category, a short message, and remediation hints. Engine packages expose
// sentinel errors for errors.Is checks; this package is the reporting layer
// that carries the human-facing form across collaborator boundaries and to
// the CLI.
package errors
