package service

import (
	"context"
	"encoding/json"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

// LinkTrackingSource lists the click-tracking records of the directory.
type LinkTrackingSource interface {
	ListLinkTrackings(ctx context.Context) (json.RawMessage, error)
}

// DashboardService backs the protected dashboard reads.
type DashboardService struct {
	trackings LinkTrackingSource
}

// NewDashboardService constructs the service.
func NewDashboardService(trackings LinkTrackingSource) *DashboardService {
	return &DashboardService{trackings: trackings}
}

// LinkTrackings returns the directory's link-tracking list unchanged.
func (s *DashboardService) LinkTrackings(ctx context.Context) (json.RawMessage, error) {
	raw, err := s.trackings.ListLinkTrackings(ctx)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Failed to fetch link trackings", err)
	}
	return raw, nil
}

// Analytics returns the dashboard summary. Figures are static sample data
// until click ingestion exists; the range is echoed back only.
func (s *DashboardService) Analytics(_ context.Context, timeRange domain.TimeRange) (domain.AnalyticsSummary, error) {
	if timeRange == "" {
		timeRange = domain.TimeRange30Days
	}
	if !timeRange.Valid() {
		return domain.AnalyticsSummary{}, apperrors.NewValidationError("timeRange must be one of 7d, 30d, 90d, all")
	}

	summary := sampleAnalytics()
	summary.TimeRange = timeRange
	return summary, nil
}

func sampleAnalytics() domain.AnalyticsSummary {
	return domain.AnalyticsSummary{
		TotalPageViews: 12547,
		UniqueVisitors: 3829,
		TotalClicks:    4231,
		Releases: []domain.ReleaseAnalytics{
			{
				ID:          "1",
				Title:       "Summer Nights EP",
				TotalClicks: 1823,
				StoreClicks: storeClicks(892, 534, 245, 152),
			},
			{
				ID:          "2",
				Title:       "Midnight Dreams",
				TotalClicks: 1456,
				StoreClicks: storeClicks(678, 423, 198, 157),
			},
			{
				ID:          "3",
				Title:       "Urban Echoes",
				TotalClicks: 952,
				StoreClicks: storeClicks(445, 289, 134, 84),
			},
		},
	}
}

func storeClicks(spotify, apple, amazon, youtube int) []domain.StoreClicks {
	return []domain.StoreClicks{
		{Store: "Spotify", Clicks: spotify},
		{Store: "Apple Music", Clicks: apple},
		{Store: "Amazon Music", Clicks: amazon},
		{Store: "YouTube Music", Clicks: youtube},
	}
}
