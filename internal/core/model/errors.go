package model

import (
	"errors"
	"fmt"
)

// MalformedInputError reports a raw item that cannot be normalized.
type MalformedInputError struct {
	Field    string
	Position int
	Source   string
	Err      error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed input: %s[%d]: missing or invalid %q", e.Source, e.Position, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// InsufficientDataError is returned when a stage has nothing to score.
type InsufficientDataError struct {
	Stage string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: no activity records", e.Stage)
}

// IncompletePipelineError names the stage output that was missing at aggregation.
type IncompletePipelineError struct {
	Stage string
}

func (e *IncompletePipelineError) Error() string {
	return fmt.Sprintf("incomplete pipeline: missing %s output", e.Stage)
}

// EmptyPersonaIndexError means the user has no indexed fragments, or none
// that match the query's filter when Filtered is set.
type EmptyPersonaIndexError struct {
	UserID   string
	Filtered bool
}

func (e *EmptyPersonaIndexError) Error() string {
	if e.Filtered {
		return fmt.Sprintf("no indexed fragments for user %q match the query", e.UserID)
	}
	return fmt.Sprintf("no indexed persona for user %q", e.UserID)
}

// ExternalCapabilityError wraps a failed embedding or generation call after retries.
type ExternalCapabilityError struct {
	Capability string
	Attempts   int
	Err        error
}

func (e *ExternalCapabilityError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Capability, e.Attempts, e.Err)
}

func (e *ExternalCapabilityError) Unwrap() error { return e.Err }

// EmbeddingMismatchError is returned when a query embedder differs from the one used at index time.
type EmbeddingMismatchError struct {
	UserID  string
	Indexed string
	Query   string
}

func (e *EmbeddingMismatchError) Error() string {
	return fmt.Sprintf("embedder mismatch for user %q: indexed with %s, querying with %s", e.UserID, e.Indexed, e.Query)
}

// IsUserError reports whether err stems from bad caller input rather than a runtime failure.
func IsUserError(err error) bool {
	var mi *MalformedInputError
	var id *InsufficientDataError
	return errors.As(err, &mi) || errors.As(err, &id)
}
