package handlers

import (
	"net/http"

	"github.com/yuzvak/eventsales-service/internal/application/queries"
	"github.com/yuzvak/eventsales-service/internal/application/use_cases"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/response"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type EventHandler struct {
	catalog *use_cases.EventCatalog
	listing *queries.Listing
	logger  *logger.Logger
}

func NewEventHandler(catalog *use_cases.EventCatalog, listing *queries.Listing, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		catalog: catalog,
		listing: listing,
		logger:  logger,
	}
}

func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.listing.ListEventsActiveNow(r.Context())
	if err != nil {
		h.logger.Error("Failed to list events", "error", err)
		response.WriteDomainError(w, err)
		return
	}

	events := make([]EventResponse, 0, len(views))
	for _, v := range views {
		events = append(events, toEventViewResponse(v))
	}
	response.WriteSuccess(w, events)
}

func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.catalog.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, toEventResponse(e))
}

func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.WriteBadRequest(w, "Invalid request body", err)
		return
	}

	patch, err := req.toPatch(true)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	in := use_cases.CreateEventInput{
		Description: *patch.Description,
		Type:        *patch.Type,
		OccursAt:    *patch.OccursAt,
		SalesStart:  *patch.SalesStart,
		SalesEnd:    *patch.SalesEnd,
		PriceCents:  *patch.PriceCents,
	}
	if patch.Location != nil {
		in.Location = *patch.Location
	}

	e, err := h.catalog.CreateEvent(r.Context(), in)
	if err != nil {
		h.logger.Warn("Event rejected", "error", err)
		response.WriteDomainError(w, err)
		return
	}
	response.WriteCreated(w, r.URL.Path+"/"+e.ID, toEventResponse(e))
}

// HandleReplace serves PUT: every required field must be sent.
func (h *EventHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *EventHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *EventHandler) update(w http.ResponseWriter, r *http.Request, full bool) {
	var req EventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.WriteBadRequest(w, "Invalid request body", err)
		return
	}

	patch, err := req.toPatch(full)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	e, err := h.catalog.UpdateEvent(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, toEventResponse(e))
}

func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteNoContent(w)
}
