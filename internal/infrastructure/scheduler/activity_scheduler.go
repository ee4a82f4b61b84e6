package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/yuzvak/eventsales-service/internal/application/queries"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type eventActivityLister interface {
	ListEventsActiveNow(ctx context.Context) ([]queries.EventView, error)
}

// ActivityScheduler periodically evaluates every event's sales window and
// exports how many events are currently on sale.
type ActivityScheduler struct {
	listing  eventActivityLister
	logger   *logger.Logger
	interval time.Duration
	report   func(total, onSale int)
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewActivityScheduler(listing eventActivityLister, logger *logger.Logger, interval time.Duration) *ActivityScheduler {
	return &ActivityScheduler{
		listing:  listing,
		logger:   logger,
		interval: interval,
		report:   monitoring.UpdateEventActivity,
		stopChan: make(chan struct{}),
	}
}

// Start blocks until ctx is done or Stop is called.
func (s *ActivityScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting activity scheduler", "interval", s.interval.String())

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Activity scheduler stopped")
			return
		case <-s.stopChan:
			s.logger.Info("Activity scheduler stopped")
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *ActivityScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *ActivityScheduler) refresh(ctx context.Context) {
	views, err := s.listing.ListEventsActiveNow(ctx)
	if err != nil {
		s.logger.Error("Failed to evaluate event activity", "error", err)
		return
	}

	onSale := 0
	for _, v := range views {
		if v.Active {
			onSale++
		}
	}
	s.report(len(views), onSale)
	s.logger.Debug("Event activity refreshed", "events", len(views), "on_sale", onSale)
}
