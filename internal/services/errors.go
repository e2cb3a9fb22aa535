package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotRecognized marks text that is not a Flickr reference at all.
	ErrNotRecognized = errors.New("not recognized")
	// ErrAmbiguous marks a Flickr reference that does not resolve to a
	// single photo (gallery, album, profile, ...).
	ErrAmbiguous = errors.New("ambiguous reference")
	// ErrMalformedRecord marks a dump record that could not be decoded.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrRemoteFetch marks a transient read failure against Flickr or
	// Commons; subject to the bounded retry policy.
	ErrRemoteFetch = errors.New("remote fetch error")
	// ErrRemoteWrite marks a rejected Commons write; terminal, never
	// auto-retried because the edit may have partially applied.
	ErrRemoteWrite = errors.New("remote write error")
	// ErrNotFound marks a missing resource (photo, page, index entry).
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks a remote call that exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRemoteFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the error is transient and worth another attempt.
// Write rejections are never retryable: the edit may already be live.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRemoteWrite) {
		return false
	}
	return errors.Is(err, ErrRemoteFetch) || errors.Is(err, ErrTimeout)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
