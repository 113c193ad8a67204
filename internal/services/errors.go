package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnreadableFile marks audio files that could not be parsed as a supported format.
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrProviderUnavailable marks lyrics provider failures that outlived the retry policy.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrWriteFailed marks sidecar write failures (permissions, disk full).
	ErrWriteFailed = errors.New("write failed")
	// ErrInvalidRoot marks a scan root that is missing, unreadable, or not a directory.
	ErrInvalidRoot   = errors.New("invalid root")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrProviderUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err, or "error" when
// err carries none of the known markers.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnreadableFile):
		return "unreadable_file"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrWriteFailed):
		return "write_failed"
	case errors.Is(err, ErrInvalidRoot):
		return "invalid_root"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "error"
	}
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
