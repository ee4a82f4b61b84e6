package handlers

import (
	"math"

	"github.com/yuzvak/eventsales-service/internal/application/queries"
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/domain/user"
	"github.com/yuzvak/eventsales-service/internal/pkg/timefmt"
)

type EventRequest struct {
	Description   *string  `json:"description"`
	Type          *string  `json:"type"`
	Location      *string  `json:"location"`
	DateTime      *string  `json:"dateTime"`
	StartingSales *string  `json:"startingSales"`
	EndingSales   *string  `json:"endingSales"`
	Price         *float64 `json:"price"`
}

type EventResponse struct {
	ID            string  `json:"id"`
	Description   string  `json:"description"`
	Type          string  `json:"type"`
	Location      string  `json:"location"`
	DateTime      string  `json:"dateTime"`
	StartingSales string  `json:"startingSales"`
	EndingSales   string  `json:"endingSales"`
	Price         float64 `json:"price"`
	Active        *bool   `json:"active,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type CreateSaleRequest struct {
	UserID  string `json:"userId"`
	EventID string `json:"eventId"`
}

type UpdateSaleRequest struct {
	Status string `json:"status"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Found bool   `json:"found"`
}

type SaleResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"userId"`
	EventID    string         `json:"eventId"`
	DateTime   string         `json:"dateTime"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"createdAt"`
	UpdatedAt  string         `json:"updatedAt"`
	Event      *EventResponse `json:"event,omitempty"`
	EventFound *bool          `json:"eventFound,omitempty"`
	User       *UserResponse  `json:"user,omitempty"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Description:   e.Description,
		Type:          string(e.Type),
		Location:      e.Location,
		DateTime:      timefmt.Format(e.OccursAt),
		StartingSales: timefmt.Format(e.SalesStart),
		EndingSales:   timefmt.Format(e.SalesEnd),
		Price:         centsToPrice(e.PriceCents),
		CreatedAt:     timefmt.Format(e.CreatedAt),
		UpdatedAt:     timefmt.Format(e.UpdatedAt),
	}
}

func toEventViewResponse(v queries.EventView) EventResponse {
	resp := toEventResponse(v.Event)
	active := v.Active
	resp.Active = &active
	return resp
}

func toSaleResponse(s *sale.Sale) SaleResponse {
	return SaleResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		EventID:   s.EventID,
		DateTime:  timefmt.Format(s.DateTime),
		Status:    string(s.Status),
		CreatedAt: timefmt.Format(s.CreatedAt),
		UpdatedAt: timefmt.Format(s.UpdatedAt),
	}
}

func toSaleViewResponse(v queries.SaleView) SaleResponse {
	resp := toSaleResponse(v.Sale)
	found := v.EventFound()
	resp.EventFound = &found
	if found {
		ev := toEventResponse(v.Event)
		resp.Event = &ev
	}
	resp.User = toUserResponse(v.User)
	return resp
}

func toUserResponse(u user.Summary) *UserResponse {
	return &UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Found: u.Found,
	}
}

func centsToPrice(cents int64) float64 {
	return float64(cents) / 100
}

// priceToCents converts a decimal price to whole cents. Sub-cent precision is
// rejected rather than rounded.
func priceToCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, domainErrors.NewValidationError("price", "must be a finite number")
	}
	if price < 0 {
		return 0, domainErrors.NewValidationError("price", "must not be negative")
	}

	scaled := price * 100
	if scaled > float64(event.MaxPriceCents) {
		return 0, domainErrors.NewValidationError("price", "exceeds maximum")
	}

	cents := math.Round(scaled)
	if math.Abs(scaled-cents) > 1e-9*math.Max(1, scaled) {
		return 0, domainErrors.NewValidationError("price", "at most two decimal places")
	}
	return int64(cents), nil
}
