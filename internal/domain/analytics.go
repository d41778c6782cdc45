package domain

// TimeRange selects the analytics window requested by the dashboard.
type TimeRange string

const (
	TimeRange7Days  TimeRange = "7d"
	TimeRange30Days TimeRange = "30d"
	TimeRange90Days TimeRange = "90d"
	TimeRangeAll    TimeRange = "all"
)

// Valid reports whether the range is one the dashboard offers.
func (r TimeRange) Valid() bool {
	switch r {
	case TimeRange7Days, TimeRange30Days, TimeRange90Days, TimeRangeAll:
		return true
	}
	return false
}

// StoreClicks counts outbound clicks to one streaming store.
type StoreClicks struct {
	Store  string `json:"store"`
	Clicks int    `json:"clicks"`
}

// ReleaseAnalytics aggregates clicks for a single release.
type ReleaseAnalytics struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	TotalClicks int           `json:"totalClicks"`
	StoreClicks []StoreClicks `json:"storeClicks"`
}

// AnalyticsSummary is the dashboard overview payload.
type AnalyticsSummary struct {
	TimeRange      TimeRange          `json:"timeRange"`
	TotalPageViews int                `json:"totalPageViews"`
	UniqueVisitors int                `json:"uniqueVisitors"`
	TotalClicks    int                `json:"totalClicks"`
	Releases       []ReleaseAnalytics `json:"releases"`
}
