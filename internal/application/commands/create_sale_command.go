package commands

import (
	"context"
	"errors"

	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/application/use_cases"
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type CreateSaleCommand struct {
	UserID  string
	EventID string
}

type CreateSaleHandler struct {
	lifecycle *use_cases.SaleLifecycle
	metrics   ports.LifecycleMetrics
	log       *logger.Logger
}

func NewCreateSaleHandler(
	lifecycle *use_cases.SaleLifecycle,
	metrics ports.LifecycleMetrics,
	log *logger.Logger,
) *CreateSaleHandler {
	return &CreateSaleHandler{
		lifecycle: lifecycle,
		metrics:   metrics,
		log:       log,
	}
}

func (h *CreateSaleHandler) Handle(ctx context.Context, cmd CreateSaleCommand) (*sale.Sale, error) {
	h.log.Debug("Processing create sale request", "user_id", cmd.UserID, "event_id", cmd.EventID)

	s, err := h.lifecycle.CreateSale(ctx, use_cases.CreateSaleInput{
		UserID:  cmd.UserID,
		EventID: cmd.EventID,
	})
	if err != nil {
		h.metrics.AdmissionRejected(rejectionReason(err))
		if domainErrors.Retryable(err) {
			h.log.Error("Create sale failed", "error", err, "event_id", cmd.EventID)
		}
		return nil, err
	}

	h.metrics.SaleCreated()
	h.log.Info("Sale created",
		"sale_id", s.ID,
		"user_id", s.UserID,
		"event_id", s.EventID,
	)
	return s, nil
}

func rejectionReason(err error) string {
	var windowErr *domainErrors.SalesWindowError
	if errors.As(err, &windowErr) {
		return windowErr.Reason
	}
	switch domainErrors.Kind(err) {
	case domainErrors.KindEventNotFound:
		return "event_not_found"
	case domainErrors.KindValidationError:
		return "validation"
	case domainErrors.KindStorageUnavailable:
		return "storage"
	default:
		return "internal"
	}
}
