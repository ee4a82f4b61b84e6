package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/pkg/timefmt"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func parseTimeField(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := timefmt.Parse(field, timefmt.FromInputMinutes(*value))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toPatch converts the request into a domain patch. With full set every
// required field must be present (PUT semantics).
func (req EventRequest) toPatch(full bool) (event.Patch, error) {
	if full {
		required := []struct {
			field   string
			present bool
		}{
			{"description", req.Description != nil},
			{"type", req.Type != nil},
			{"dateTime", req.DateTime != nil},
			{"startingSales", req.StartingSales != nil},
			{"endingSales", req.EndingSales != nil},
			{"price", req.Price != nil},
		}
		for _, r := range required {
			if !r.present {
				return event.Patch{}, domainErrors.NewValidationError(r.field, "required")
			}
		}
	}

	patch := event.Patch{
		Description: req.Description,
		Location:    req.Location,
	}

	if req.Type != nil {
		typ, err := event.ParseType(*req.Type)
		if err != nil {
			return event.Patch{}, err
		}
		patch.Type = &typ
	}

	var err error
	if patch.OccursAt, err = parseTimeField("dateTime", req.DateTime); err != nil {
		return event.Patch{}, err
	}
	if patch.SalesStart, err = parseTimeField("startingSales", req.StartingSales); err != nil {
		return event.Patch{}, err
	}
	if patch.SalesEnd, err = parseTimeField("endingSales", req.EndingSales); err != nil {
		return event.Patch{}, err
	}

	if req.Price != nil {
		cents, err := priceToCents(*req.Price)
		if err != nil {
			return event.Patch{}, err
		}
		patch.PriceCents = &cents
	}

	return patch, nil
}
