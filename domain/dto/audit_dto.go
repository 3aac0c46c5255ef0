package dto

import "github.com/Jhoseto/factcheckerAI-sub002/domain/model"

// AuditReferenceRequest carries the current reference input text. Sent on
// every edit; the orchestrator debounces metadata resolution internally.
type AuditReferenceRequest struct {
	Reference string `json:"reference"`
}

// AuditSubmitRequest starts an audit run.
type AuditSubmitRequest struct {
	Reference            string          `json:"reference" binding:"required"`
	Mode                 model.AuditMode `json:"mode"`
	IncludeTranscription *bool           `json:"include_transcription,omitempty"`
}

// AuditStateResponse is a snapshot of the orchestrator for one user.
type AuditStateResponse struct {
	State        model.AuditState     `json:"state"`
	Reference    string               `json:"reference"`
	Kind         model.ReferenceKind  `json:"kind,omitempty"`
	Metadata     *model.VideoMetadata `json:"metadata,omitempty"`
	Estimate     *model.CostEstimate  `json:"estimate,omitempty"`
	Progress     string               `json:"progress,omitempty"`
	Phase        string               `json:"phase,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
}

// AuditSubmitResponse wraps the terminal result of a run.
type AuditSubmitResponse struct {
	Result *model.AuditResult `json:"result"`
}
