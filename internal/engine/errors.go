package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a transition targets a record the
	// session does not hold.
	ErrNotFound = errors.New("opportunity not found")

	// ErrUnknownBucket is returned for a drop target that is neither a
	// persisted status nor the closed column.
	ErrUnknownBucket = errors.New("unknown board bucket")
)

// LoadError reports which source collections failed during a load. The
// session still holds the records of whichever collection succeeded, so
// callers can present partial data alongside the notification.
type LoadError struct {
	GenericErr  error
	SpeakingErr error
}

func (e *LoadError) Error() string {
	switch {
	case e.GenericErr != nil && e.SpeakingErr != nil:
		return fmt.Sprintf("both collections failed to load: %v; %v", e.GenericErr, e.SpeakingErr)
	case e.GenericErr != nil:
		return fmt.Sprintf("opportunities failed to load: %v", e.GenericErr)
	case e.SpeakingErr != nil:
		return fmt.Sprintf("speaking opportunities failed to load: %v", e.SpeakingErr)
	}
	return "load failed"
}

// Partial reports whether at least one collection loaded.
func (e *LoadError) Partial() bool {
	return e.GenericErr == nil || e.SpeakingErr == nil
}

// ValidationError is raised before any network call for a malformed
// create or edit payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
