package use_cases

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuzvak/eventsales-service/internal/application/ports"
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/pkg/clock"
	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

// A sale can change status at most len(statuses)-1 times, so a writer that keeps
// losing the compare-and-set must see a terminal status well before this bound.
var maxTransitionAttempts = len(sale.Statuses()) + 1

type SaleLifecycle struct {
	eventRepo ports.EventRepository
	saleRepo  ports.SaleRepository
	clock     clock.Clock
	ids       generator.IDGenerator
	log       *logger.Logger
}

func NewSaleLifecycle(
	eventRepo ports.EventRepository,
	saleRepo ports.SaleRepository,
	clk clock.Clock,
	ids generator.IDGenerator,
	log *logger.Logger,
) *SaleLifecycle {
	return &SaleLifecycle{
		eventRepo: eventRepo,
		saleRepo:  saleRepo,
		clock:     clk,
		ids:       ids,
		log:       log,
	}
}

type CreateSaleInput struct {
	UserID  string
	EventID string
}

// CreateSale admits a new OPEN sale when the event's sales window contains now.
func (uc *SaleLifecycle) CreateSale(ctx context.Context, in CreateSaleInput) (*sale.Sale, error) {
	userID := strings.TrimSpace(in.UserID)
	eventID := strings.TrimSpace(in.EventID)
	if userID == "" {
		return nil, domainErrors.NewValidationError("userId", "required")
	}
	if eventID == "" {
		return nil, domainErrors.NewValidationError("eventId", "required")
	}

	// The window is always checked against the stored event; a cached copy
	// could predate an update that closed it.
	ev, err := uc.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	if err := event.CheckSalesWindow(ev, now); err != nil {
		uc.log.Info("Sale rejected by sales window",
			"event_id", eventID,
			"user_id", userID,
			"error", err,
		)
		return nil, err
	}

	s, err := sale.NewSale(uc.ids.NewID(), userID, eventID, now)
	if err != nil {
		return nil, err
	}

	if err := uc.saleRepo.CreateSale(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

// UpdateSaleStatus applies one legal transition. DateTime is never touched.
// When a concurrent writer wins the compare-and-set, the request is re-evaluated
// against the committed status, exactly as if it had run after that writer.
func (uc *SaleLifecycle) UpdateSaleStatus(ctx context.Context, id string, to sale.Status) (*sale.Sale, error) {
	if !to.Valid() {
		return nil, domainErrors.NewValidationError("status", "unknown sale status")
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		current, err := uc.saleRepo.GetSaleByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := sale.CheckTransition(current.Status, to); err != nil {
			return nil, err
		}

		now := uc.clock.Now()
		applied, err := uc.saleRepo.CompareAndSetStatus(ctx, id, current.Status, to, now)
		if err != nil {
			return nil, err
		}
		if applied {
			current.Status = to
			current.UpdatedAt = now
			return current, nil
		}

		uc.log.Debug("Sale status changed concurrently, re-evaluating",
			"sale_id", id,
			"expected", string(current.Status),
			"requested", string(to),
			"attempt", attempt+1,
		)
	}

	return nil, fmt.Errorf("sale %s: status did not settle after %d attempts: %w",
		id, maxTransitionAttempts, domainErrors.ErrConflict)
}

func (uc *SaleLifecycle) GetSale(ctx context.Context, id string) (*sale.Sale, error) {
	return uc.saleRepo.GetSaleByID(ctx, id)
}

func (uc *SaleLifecycle) ListSales(ctx context.Context) ([]*sale.Sale, error) {
	return uc.saleRepo.ListSales(ctx)
}

// DeleteSale is the administrative override; it ignores the status machine.
func (uc *SaleLifecycle) DeleteSale(ctx context.Context, id string) error {
	if err := uc.saleRepo.DeleteSale(ctx, id); err != nil {
		return err
	}
	uc.log.Warn("Sale deleted by administrative override", "sale_id", id)
	return nil
}
