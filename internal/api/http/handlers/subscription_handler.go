package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/thiloilg/page-for-artists.com/internal/api/dto"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	"github.com/thiloilg/page-for-artists.com/internal/service"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

const (
	successPath = "/success"
	errorPath   = "/error"
)

// SubscriptionWorkflow is the create and reconcile side of the subscription service.
type SubscriptionWorkflow interface {
	Create(ctx context.Context, in service.CreateSubscriptionInput) (*service.CreateSubscriptionResult, error)
	Reconcile(ctx context.Context, subscriptionID string) (*domain.Customer, error)
}

// SubscriptionHandler serves checkout and the PayPal return URL.
type SubscriptionHandler struct {
	workflow SubscriptionWorkflow
	logger   *zap.Logger
}

// NewSubscriptionHandler constructs handler.
func NewSubscriptionHandler(workflow SubscriptionWorkflow, logger *zap.Logger) *SubscriptionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionHandler{workflow: workflow, logger: logger}
}

// Create handles POST /create-subscription.
func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}
	if strings.TrimSpace(req.Artist()) == "" || strings.TrimSpace(req.Email) == "" {
		return apperrors.NewValidationError("Spotify URI and email are required")
	}
	artist, err := domain.ParseSpotifyArtist(req.Artist())
	if err != nil {
		return apperrors.NewValidationError("Spotify URI must be an open.spotify.com artist link or spotify:artist:<id>")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := dto.Validate(req); err != nil {
		return apperrors.NewValidationError("A valid email address is required")
	}

	res, err := h.workflow.Create(c.UserContext(), service.CreateSubscriptionInput{Artist: artist, Email: req.Email})
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateSubscriptionResponse{SubscriptionID: res.SubscriptionID, ApprovalURL: res.ApprovalURL})
}

// Reconcile handles GET /handle-subscription-success?subscription_id=.
// Failures after input validation redirect to the error page.
func (h *SubscriptionHandler) Reconcile(c *fiber.Ctx) error {
	subscriptionID := strings.TrimSpace(c.Query("subscription_id"))
	if subscriptionID == "" {
		return apperrors.NewValidationError("Subscription ID is required")
	}

	if _, err := h.workflow.Reconcile(c.UserContext(), subscriptionID); err != nil {
		h.logger.Error("subscription reconciliation failed",
			zap.String("subscription_id", subscriptionID),
			zap.Bool("customer_missing", service.IsCustomerMissing(err)),
			zap.Error(err))
		return c.Redirect(errorPath, fiber.StatusFound)
	}
	return c.Redirect(successPath, fiber.StatusFound)
}
