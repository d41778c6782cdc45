package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
	"github.com/thiloilg/page-for-artists.com/internal/events"
)

// OrphanRecorder stores orphaned subscriptions for manual reconciliation.
type OrphanRecorder interface {
	Record(ctx context.Context, orphan *domain.OrphanedSubscription) error
}

// NotificationService reacts to subscription lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	orphans    OrphanRecorder
	logger     *zap.Logger
}

// NewNotificationService creates the service. orphans may be nil, in which
// case orphaned subscriptions are only logged.
func NewNotificationService(dispatcher events.Dispatcher, orphans OrphanRecorder, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		orphans:    orphans,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSubscriptionCreated, n.handleSubscriptionCreated)
	n.dispatcher.Subscribe(events.EventSubscriptionReconciled, n.handleSubscriptionReconciled)
	n.dispatcher.Subscribe(events.EventSubscriptionOrphaned, n.handleSubscriptionOrphaned)
}

func (n *NotificationService) handleSubscriptionCreated(_ context.Context, event events.Event) error {
	n.logger.Info("SubscriptionCreated", zap.String("subscription_id", event.SubscriptionID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSubscriptionReconciled(_ context.Context, event events.Event) error {
	n.logger.Info("SubscriptionReconciled", zap.String("subscription_id", event.SubscriptionID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSubscriptionOrphaned(ctx context.Context, event events.Event) error {
	n.logger.Warn("SubscriptionOrphaned", zap.String("subscription_id", event.SubscriptionID), zap.Any("payload", event.Payload))
	if n.orphans == nil {
		return nil
	}

	payload, ok := event.Payload.(events.SubscriptionOrphanedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	orphan := &domain.OrphanedSubscription{
		SubscriptionID: event.SubscriptionID,
		Email:          payload.Email,
		ArtistURI:      payload.ArtistURI,
		Status:         payload.Status,
		Reason:         payload.Reason,
	}
	if err := n.orphans.Record(ctx, orphan); err != nil {
		return fmt.Errorf("record orphan %s: %w", event.SubscriptionID, err)
	}
	return nil
}
