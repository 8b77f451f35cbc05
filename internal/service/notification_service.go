package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/config"
	"github.com/spec-kit/clinic-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventPrescriptionSaved, n.handlePrescriptionSaved)
	n.dispatcher.Subscribe(events.EventAppointmentCompleted, n.handleAppointmentCompleted)
}

func (n *NotificationService) handlePrescriptionSaved(ctx context.Context, event events.Event) error {
	n.logger.Info("PrescriptionSaved",
		zap.Int64("appointment_id", event.AppointmentID),
		zap.String("event_id", event.ID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAppointmentCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("AppointmentCompleted",
		zap.Int64("appointment_id", event.AppointmentID),
		zap.String("event_id", event.ID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// Payloads carry patient data, so only ids reach the logs.
func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("appointment_id", event.AppointmentID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("appointment_id", event.AppointmentID),
		zap.String("event_type", string(event.Type)))
}
