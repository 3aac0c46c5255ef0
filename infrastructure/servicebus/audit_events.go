package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/Jhoseto/factcheckerAI-sub002/domain/model"
	"github.com/Jhoseto/factcheckerAI-sub002/infrastructure/logger"
)

// NewServiceBus creates the Azure Service Bus client using the ambient
// Azure credential chain.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

// AuditEventSender mirrors completed-audit events onto a Service Bus queue
// for deployments that consume from Azure instead of Pub/Sub.
type AuditEventSender struct {
	client *azservicebus.Client
	queue  string
}

func NewAuditEventSender(client *azservicebus.Client, queue string) *AuditEventSender {
	return &AuditEventSender{client: client, queue: queue}
}

// PublishCompleted sends the event; failures are logged and swallowed.
func (s *AuditEventSender) PublishCompleted(ctx context.Context, userID string, result *model.AuditResult) {
	if s == nil || s.client == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"user_id":   userID,
		"outcome":   result.Outcome,
		"reference": result.Reference.Raw,
		"kind":      result.Reference.Kind,
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed to marshal audit event")
		return
	}

	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return
	}
	defer func() {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	if err := sender.SendMessage(ctx, &azservicebus.Message{Body: payload}, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
	}
}
