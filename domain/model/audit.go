package model

import "time"

// AuditMode selects the analysis depth. Deep mode carries the transcription
// sub-option (defaults to true).
type AuditMode string

const (
	AuditModeStandard AuditMode = "standard"
	AuditModeDeep     AuditMode = "deep"
)

// ReferenceKind discriminates what the user pasted.
type ReferenceKind string

const (
	ReferenceVideo ReferenceKind = "video"
	ReferenceLink  ReferenceKind = "link"
)

// MediaReference is the raw user-supplied URL plus its discriminant.
type MediaReference struct {
	Raw  string        `json:"raw"`
	Kind ReferenceKind `json:"kind"`
}

// VideoMetadata is resolved once per reference and superseded wholesale
// whenever the reference text changes.
type VideoMetadata struct {
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	Author            string `json:"author"`
	DurationSeconds   int    `json:"duration_seconds"`
	DurationFormatted string `json:"duration_formatted"`
	ThumbnailURL      string `json:"thumbnail_url"`
}

// ModeCost is the point cost for one analysis mode.
type ModeCost struct {
	PointsCost int `json:"points_cost"`
}

// CostEstimate pairs the costs for both modes, derived from a single
// VideoMetadata. Nil when no metadata is resolved.
type CostEstimate struct {
	Standard ModeCost `json:"standard"`
	Deep     ModeCost `json:"deep"`
}

// AuditRequest is the orchestrator's transient unit of work. At most one is
// in flight per orchestrator instance.
type AuditRequest struct {
	Reference            MediaReference `json:"reference"`
	Mode                 AuditMode      `json:"mode"`
	IncludeTranscription bool           `json:"include_transcription"`
	RequestedAt          time.Time      `json:"requested_at"`
}

// AuditOutcome tags the terminal result of an audit.
type AuditOutcome string

const (
	OutcomeSuccess            AuditOutcome = "success"
	OutcomeInsufficientPoints AuditOutcome = "insufficient_points"
	OutcomeRateLimited        AuditOutcome = "rate_limited"
	OutcomeFailed             AuditOutcome = "failed"
)

// Report is the structured credibility report returned by the analysis
// service. Payload is kept opaque; rendering is out of scope.
type Report struct {
	ID          string                 `json:"id,omitempty"`
	Title       string                 `json:"title"`
	Summary     string                 `json:"summary"`
	Credibility string                 `json:"credibility"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

// AnalysisResult is what the gateway resolves to on success. NewBalance is
// nil when the service did not return an updated balance.
type AnalysisResult struct {
	Report     *Report `json:"report"`
	NewBalance *int    `json:"new_balance,omitempty"`
}

// AuditResult is the tagged outcome yielded to the caller.
type AuditResult struct {
	Outcome    AuditOutcome   `json:"outcome"`
	Report     *Report        `json:"report,omitempty"`
	NewBalance *int           `json:"new_balance,omitempty"`
	Reference  MediaReference `json:"reference"`
	Reason     string         `json:"reason,omitempty"`
}

// AuditState names the orchestrator's state machine positions.
type AuditState string

const (
	StateIdle              AuditState = "idle"
	StateResolvingMetadata AuditState = "resolving_metadata"
	StateReady             AuditState = "ready"
	StateSubmitting        AuditState = "submitting"
	StateStreaming         AuditState = "streaming"
	StateCompleted         AuditState = "completed"
	StateFailed            AuditState = "failed"
)
