package commands

import (
	"context"

	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/application/use_cases"
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type UpdateSaleStatusCommand struct {
	SaleID string
	Status string
}

type UpdateSaleStatusHandler struct {
	lifecycle *use_cases.SaleLifecycle
	metrics   ports.LifecycleMetrics
	log       *logger.Logger
}

func NewUpdateSaleStatusHandler(
	lifecycle *use_cases.SaleLifecycle,
	metrics ports.LifecycleMetrics,
	log *logger.Logger,
) *UpdateSaleStatusHandler {
	return &UpdateSaleStatusHandler{
		lifecycle: lifecycle,
		metrics:   metrics,
		log:       log,
	}
}

func (h *UpdateSaleStatusHandler) Handle(ctx context.Context, cmd UpdateSaleStatusCommand) (*sale.Sale, error) {
	to, err := sale.ParseStatus(cmd.Status)
	if err != nil {
		h.metrics.TransitionAttempted("unknown", "validation")
		return nil, err
	}

	s, err := h.lifecycle.UpdateSaleStatus(ctx, cmd.SaleID, to)
	if err != nil {
		h.metrics.TransitionAttempted(string(to), transitionResult(err))
		if domainErrors.Retryable(err) {
			h.log.Error("Sale status update failed", "error", err, "sale_id", cmd.SaleID)
		} else {
			h.log.Info("Sale status update rejected", "error", err, "sale_id", cmd.SaleID, "requested", string(to))
		}
		return nil, err
	}

	h.metrics.TransitionAttempted(string(to), "ok")
	h.log.Info("Sale status updated", "sale_id", s.ID, "status", string(s.Status))
	return s, nil
}

func transitionResult(err error) string {
	switch domainErrors.Kind(err) {
	case domainErrors.KindIllegalTransition:
		return "illegal"
	case domainErrors.KindSaleNotFound:
		return "not_found"
	case domainErrors.KindStorageUnavailable:
		return "storage"
	default:
		return "error"
	}
}
