package model

import (
	"errors"
	"fmt"
)

// Error taxonomy for the audit pipeline. Every error is terminal for the
// current audit request; the caller must resubmit.

// ValidationError marks a malformed or empty media reference.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// MetadataError marks a failed video metadata lookup (network failure,
// non-200 upstream response or upstream not-found).
type MetadataError struct {
	Reference string
	Cause     error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata lookup failed for %q: %v", e.Reference, e.Cause)
}

func (e *MetadataError) Unwrap() error { return e.Cause }

// InsufficientPointsError is returned when the balance check fails, either
// locally pre-flight or by the analysis service.
type InsufficientPointsError struct {
	Required int
	Balance  int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: required %d, balance %d", e.Required, e.Balance)
}

// RateLimitError marks upstream throttling. RetryAfterSeconds is a hint for
// the user, never acted on automatically.
type RateLimitError struct {
	RetryAfterSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfterSeconds)
}

// AnalysisError wraps an opaque upstream analysis failure.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string { return fmt.Sprintf("analysis failed: %v", e.Cause) }

func (e *AnalysisError) Unwrap() error { return e.Cause }

// Sentinel errors for conditions with no extra payload.
var (
	ErrAuthRequired    = errors.New("active session required")
	ErrAuditInFlight   = errors.New("an audit is already in progress")
	ErrArchiveQuotaMet = errors.New("archive limit reached for this category")
)
