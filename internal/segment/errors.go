package segment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrManifestNotFound indicates the lesson has no manifest yet, so
	// there is nothing to segment or correct.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrAudioSourceMissing indicates a recording referenced by the
	// manifest is absent or unreadable on disk.
	ErrAudioSourceMissing = errors.New("audio source missing")
	// ErrUnknownSyllable indicates a syllable that no manifest entry
	// covers.
	ErrUnknownSyllable = errors.New("unknown syllable")
	// ErrNoBaseline indicates a manual correction was requested for a
	// syllable that has never been segmented automatically.
	ErrNoBaseline = errors.New("no baseline segment")
	// ErrWriteFailure indicates a clip or manifest could not be written.
	ErrWriteFailure = errors.New("write failure")
)

// Wrap builds an error that carries lesson context while tagging it with the
// provided marker so callers can classify failures with errors.Is.
func Wrap(marker error, lesson, operation, message string, err error) error {
	detail := buildDetail(lesson, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(lesson, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{lesson, operation, message} {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "segmentation failure"
	}
	return strings.Join(parts, ": ")
}
