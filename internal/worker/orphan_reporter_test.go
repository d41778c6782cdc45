package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thiloilg/page-for-artists.com/internal/domain"
	"github.com/thiloilg/page-for-artists.com/internal/events"
	"github.com/thiloilg/page-for-artists.com/internal/service"
)

type stubLister struct {
	orphans []domain.OrphanedSubscription
	err     error
}

func (s stubLister) ListUnresolved(context.Context, int) ([]domain.OrphanedSubscription, error) {
	return s.orphans, s.err
}

func TestReportOrphans(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)

	lister := stubLister{orphans: []domain.OrphanedSubscription{
		{SubscriptionID: "I-1", Email: "a@b.com", CreatedAt: time.Now()},
		{SubscriptionID: "I-2", Email: "c@d.com", CreatedAt: time.Now()},
	}}
	assert.Equal(t, 2, ReportOrphans(context.Background(), lister, logger))
	assert.Equal(t, 2, logs.FilterMessage("unresolved orphaned subscription").Len())

	assert.Equal(t, 0, ReportOrphans(context.Background(), stubLister{err: errors.New("db down")}, logger))
	assert.Equal(t, 1, logs.FilterMessage("list orphaned subscriptions").Len())
}

type countingLister struct {
	calls chan struct{}
}

func (c countingLister) ListUnresolved(context.Context, int) ([]domain.OrphanedSubscription, error) {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return nil, nil
}

func TestStartRunsReporterUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := countingLister{calls: make(chan struct{}, 1)}
	Start(ctx, Config{Orphans: lister, ReportInterval: 5 * time.Millisecond}, nil)

	select {
	case <-lister.calls:
	case <-time.After(time.Second):
		t.Fatal("reporter never listed the ledger")
	}
}

func TestStartWithoutLedger(t *testing.T) {
	assert.NotPanics(t, func() {
		Start(context.Background(), Config{ReportInterval: time.Millisecond}, nil)
	})
}

type recordingLedger struct {
	ids []string
}

func (r *recordingLedger) Record(_ context.Context, o *domain.OrphanedSubscription) error {
	r.ids = append(r.ids, o.SubscriptionID)
	return nil
}

func TestStartRegistersNotificationHandlers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	ledger := &recordingLedger{}
	Start(context.Background(), Config{Notifications: service.NewNotificationService(dispatcher, ledger, nil)}, nil)

	err := dispatcher.Publish(context.Background(), events.NewEvent(events.EventSubscriptionOrphaned, "I-7", events.SubscriptionOrphanedPayload{Email: "a@b.com"}))
	assert.NoError(t, err)
	assert.Equal(t, []string{"I-7"}, ledger.ids)
}
