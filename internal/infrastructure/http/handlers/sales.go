package handlers

import (
	"net/http"

	"github.com/yuzvak/eventsales-service/internal/application/commands"
	"github.com/yuzvak/eventsales-service/internal/application/queries"
	"github.com/yuzvak/eventsales-service/internal/application/use_cases"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/response"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type SaleHandler struct {
	createSale   *commands.CreateSaleHandler
	updateStatus *commands.UpdateSaleStatusHandler
	lifecycle    *use_cases.SaleLifecycle
	listing      *queries.Listing
	logger       *logger.Logger
}

func NewSaleHandler(
	createSale *commands.CreateSaleHandler,
	updateStatus *commands.UpdateSaleStatusHandler,
	lifecycle *use_cases.SaleLifecycle,
	listing *queries.Listing,
	logger *logger.Logger,
) *SaleHandler {
	return &SaleHandler{
		createSale:   createSale,
		updateStatus: updateStatus,
		lifecycle:    lifecycle,
		listing:      listing,
		logger:       logger,
	}
}

func (h *SaleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.listing.ListSalesWithContext(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sales", "error", err)
		response.WriteDomainError(w, err)
		return
	}

	sales := make([]SaleResponse, 0, len(views))
	for _, v := range views {
		sales = append(sales, toSaleViewResponse(v))
	}
	response.WriteSuccess(w, sales)
}

func (h *SaleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.lifecycle.GetSale(r.Context(), r.PathValue("id"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, toSaleResponse(s))
}

func (h *SaleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.WriteBadRequest(w, "Invalid request body", err)
		return
	}

	s, err := h.createSale.Handle(r.Context(), commands.CreateSaleCommand{
		UserID:  req.UserID,
		EventID: req.EventID,
	})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteCreated(w, r.URL.Path+"/"+s.ID, toSaleResponse(s))
}

// HandleUpdateStatus accepts {"status": "..."}; any other field is ignored.
func (h *SaleHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.WriteBadRequest(w, "Invalid request body", err)
		return
	}

	s, err := h.updateStatus.Handle(r.Context(), commands.UpdateSaleStatusCommand{
		SaleID: r.PathValue("id"),
		Status: req.Status,
	})
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, toSaleResponse(s))
}

func (h *SaleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.lifecycle.DeleteSale(r.Context(), r.PathValue("id")); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteNoContent(w)
}
