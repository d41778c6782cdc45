package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
	apperrors "github.com/thiloilg/page-for-artists.com/pkg/util"
)

func TestAnalytics(t *testing.T) {
	svc := NewDashboardService(newFakeDirectory())

	summary, err := svc.Analytics(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.TimeRange30Days, summary.TimeRange)
	assert.Equal(t, 12547, summary.TotalPageViews)
	require.Len(t, summary.Releases, 3)
	assert.Equal(t, "Summer Nights EP", summary.Releases[0].Title)

	summary, err = svc.Analytics(context.Background(), domain.TimeRange7Days)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeRange7Days, summary.TimeRange)

	_, err = svc.Analytics(context.Background(), "1y")
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
}

func TestLinkTrackings(t *testing.T) {
	dir := newFakeDirectory()
	svc := NewDashboardService(dir)

	raw, err := svc.LinkTrackings(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(raw))

	dir.findErr = errors.New("strapi down")
	_, err = svc.LinkTrackings(context.Background())
	de := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "Failed to fetch link trackings", de.Message)
}
