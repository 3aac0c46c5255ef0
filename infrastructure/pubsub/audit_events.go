package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// NewPubSub creates the Google Pub/Sub client. Nil-safe downstream when the
// project is not configured.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

// AuditEventPublisher publishes completed-audit events to a Pub/Sub topic.
type AuditEventPublisher struct {
	client *pubsub.Client
	topic  string
}

func NewAuditEventPublisher(client *pubsub.Client, topic string) *AuditEventPublisher {
	return &AuditEventPublisher{client: client, topic: topic}
}

// CompletedEvent is the wire shape of an audit.completed message.
type CompletedEvent struct {
	UserID      string    `json:"user_id"`
	Outcome     string    `json:"outcome"`
	Reference   string    `json:"reference"`
	Kind        string    `json:"kind"`
	ReportTitle string    `json:"report_title,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// PublishCompleted sends the event. Failures are logged, never surfaced to
// the audit flow.
func (p *AuditEventPublisher) PublishCompleted(ctx context.Context, userID string, result *model.AuditResult) {
	if p == nil || p.client == nil {
		return
	}
	evt := CompletedEvent{
		UserID:      userID,
		Outcome:     string(result.Outcome),
		Reference:   result.Reference.Raw,
		Kind:        string(result.Reference.Kind),
		CompletedAt: time.Now().UTC(),
	}
	if result.Report != nil {
		evt.ReportTitle = result.Report.Title
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed to marshal audit event")
		return
	}

	topic := p.client.Topic(p.topic)
	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed to publish audit event")
		return
	}
	logger.GetLogger().WithField("server_id", serverID).Info("Audit event published")
}
