package dto

import "github.com/thiloilg/page-for-artists.com/internal/domain"

// AnalyticsRequest selects the reporting window.
type AnalyticsRequest struct {
	TimeRange domain.TimeRange `json:"timeRange"`
}
