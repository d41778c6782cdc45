package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/thiloilg/page-for-artists.com/internal/api/dto"
	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

// DashboardReader is the read side backing the artist dashboard.
type DashboardReader interface {
	LinkTrackings(ctx context.Context) (json.RawMessage, error)
	Analytics(ctx context.Context, timeRange domain.TimeRange) (domain.AnalyticsSummary, error)
}

// DashboardHandler serves the bearer-protected dashboard endpoints.
type DashboardHandler struct {
	reader DashboardReader
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(reader DashboardReader) *DashboardHandler {
	return &DashboardHandler{reader: reader}
}

// LinkTrackings handles GET /get-link-trackings.
func (h *DashboardHandler) LinkTrackings(c *fiber.Ctx) error {
	raw, err := h.reader.LinkTrackings(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// Analytics handles POST /get-analytics. An empty body selects the default range.
func (h *DashboardHandler) Analytics(c *fiber.Ctx) error {
	var req dto.AnalyticsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("Invalid request body")
		}
	}

	summary, err := h.reader.Analytics(c.UserContext(), req.TimeRange)
	if err != nil {
		if de := apperrors.ToDomainError(err); de.HTTPStatus < fiber.StatusInternalServerError {
			return de
		}
		return apperrors.NewUpstreamError("Failed to fetch analytics data", err)
	}
	return c.JSON(summary)
}
