package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/directory"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	"github.com/thiloilg/page-for-artists.com/internal/events"
	"github.com/thiloilg/page-for-artists.com/internal/paypal"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

const (
	createFailedMessage = "Failed to create subscription"

	// orphanPublishTimeout bounds the ledger write once the request context is gone.
	orphanPublishTimeout = 5 * time.Second
)

// ErrReconciliation wraps every failure of the post-approval step.
var ErrReconciliation = errors.New("subscription reconciliation failed")

// Provider is the subset of the PayPal client the workflow uses.
type Provider interface {
	GetAccessToken(ctx context.Context) (string, error)
	CreateSubscription(ctx context.Context, accessToken string, in paypal.CreateSubscriptionRequest) (*paypal.CreatedSubscription, error)
	FetchSubscription(ctx context.Context, accessToken, subscriptionID string) (*domain.Subscription, error)
}

// CustomerDirectory is the subset of the directory the workflow uses.
type CustomerDirectory interface {
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	FindCustomerBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, key string, patch domain.CustomerPatch) (*domain.Customer, error)
}

// SubscriptionConfig holds the plan and callback URLs.
type SubscriptionConfig struct {
	PlanID    string
	ReturnURL string
	CancelURL string
}

// SubscriptionService drives create and reconcile.
type SubscriptionService struct {
	provider   Provider
	directory  CustomerDirectory
	dispatcher events.Dispatcher
	cfg        SubscriptionConfig
	logger     *zap.Logger
}

// NewSubscriptionService creates the service.
func NewSubscriptionService(provider Provider, dir CustomerDirectory, dispatcher events.Dispatcher, cfg SubscriptionConfig, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{
		provider:   provider,
		directory:  dir,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// CreateSubscriptionInput is validated input for Create.
type CreateSubscriptionInput struct {
	Artist domain.SpotifyArtist
	Email  string
}

// CreateSubscriptionResult is returned to the checkout page.
type CreateSubscriptionResult struct {
	SubscriptionID string
	ApprovalURL    string
}

// Create opens a PayPal subscription and stores a pending customer for it.
// A directory failure after PayPal succeeded is not rolled back; the
// subscription is reported as orphaned instead.
func (s *SubscriptionService) Create(ctx context.Context, in CreateSubscriptionInput) (*CreateSubscriptionResult, error) {
	artistURI := in.Artist.URI()

	token, err := s.provider.GetAccessToken(ctx)
	if err != nil {
		s.logger.Error("paypal access token failed", zap.Error(err))
		return nil, apperrors.NewUpstreamError(createFailedMessage, err)
	}

	created, err := s.provider.CreateSubscription(ctx, token, paypal.CreateSubscriptionRequest{
		PlanID:    s.cfg.PlanID,
		Email:     in.Email,
		CustomID:  artistURI,
		ReturnURL: s.cfg.ReturnURL,
		CancelURL: s.cfg.CancelURL,
	})
	if err != nil {
		s.logger.Error("paypal subscription create failed", zap.Error(err))
		return nil, apperrors.NewUpstreamError(createFailedMessage, err)
	}
	s.logger.Info("paypal subscription created",
		zap.String("subscription_id", created.ID),
		zap.String("status", string(created.Status)))

	_, err = s.directory.CreateCustomer(ctx, domain.Customer{
		Email:          in.Email,
		SpotifyURL:     artistURI,
		SubscriptionID: created.ID,
		PaymentStatus:  string(created.Status),
	})
	if err != nil {
		s.logger.Error("orphaned paypal subscription: directory create failed",
			zap.String("subscription_id", created.ID),
			zap.String("email", in.Email),
			zap.Error(err))
		// Detached from ctx so an expired request deadline still reaches the ledger.
		orphanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orphanPublishTimeout)
		defer cancel()
		s.publish(orphanCtx, events.NewEvent(events.EventSubscriptionOrphaned, created.ID, events.SubscriptionOrphanedPayload{
			Email:     in.Email,
			ArtistURI: artistURI,
			Status:    string(created.Status),
			Reason:    err.Error(),
		}))
		return nil, apperrors.NewUpstreamError(createFailedMessage, err)
	}

	s.publish(ctx, events.NewEvent(events.EventSubscriptionCreated, created.ID, events.SubscriptionCreatedPayload{
		Email:     in.Email,
		ArtistURI: artistURI,
		Status:    string(created.Status),
	}))

	return &CreateSubscriptionResult{SubscriptionID: created.ID, ApprovalURL: created.ApprovalURL}, nil
}

// Reconcile copies the approved subscription's details onto its customer.
func (s *SubscriptionService) Reconcile(ctx context.Context, subscriptionID string) (*domain.Customer, error) {
	token, err := s.provider.GetAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconciliation, err)
	}

	sub, err := s.provider.FetchSubscription(ctx, token, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconciliation, err)
	}

	customer, err := s.directory.FindCustomerBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconciliation, err)
	}
	if customer.Key == "" {
		return nil, fmt.Errorf("%w: customer for %s has no directory key", ErrReconciliation, subscriptionID)
	}

	updated, err := s.directory.UpdateCustomer(ctx, customer.Key, domain.CustomerPatch{
		Email:           sub.Subscriber.EmailAddress,
		PaymentStatus:   string(sub.Status),
		PayPalStartTime: sub.EffectiveStartTime(),
		FirstName:       sub.Subscriber.Name.GivenName,
		LastName:        sub.Subscriber.Name.Surname,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconciliation, err)
	}

	s.publish(ctx, events.NewEvent(events.EventSubscriptionReconciled, subscriptionID, events.SubscriptionReconciledPayload{
		CustomerKey: customer.Key,
		Status:      string(sub.Status),
		Email:       sub.Subscriber.EmailAddress,
	}))
	return updated, nil
}

// IsCustomerMissing reports whether a reconcile error came from an empty lookup.
func IsCustomerMissing(err error) bool {
	return errors.Is(err, directory.ErrCustomerNotFound)
}

func (s *SubscriptionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subscription_id", event.SubscriptionID),
			zap.Error(err))
	}
}
