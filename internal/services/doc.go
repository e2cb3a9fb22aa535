// Package services defines the error taxonomy shared by the scanner,
// reconciler, and remote API clients.
//
// Errors are classified by wrapping them with one of the exported sentinel
// markers so callers can decide whether a failure is retryable, terminal, or
// merely something to log. Use Wrap to attach component and operation context
// while tagging the error with its marker.
package services
