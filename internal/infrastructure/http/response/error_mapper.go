package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Message    string
}

var errorMappings = map[string]ErrorMapping{
	domainErrors.KindEventNotFound: {
		HTTPStatus: http.StatusNotFound,
		Message:    "Event not found",
	},
	domainErrors.KindSaleNotFound: {
		HTTPStatus: http.StatusNotFound,
		Message:    "Sale not found",
	},
	domainErrors.KindSalesWindowClosed: {
		HTTPStatus: http.StatusConflict,
		Message:    "Sales window is closed for this event",
	},
	domainErrors.KindIllegalTransition: {
		HTTPStatus: http.StatusConflict,
		Message:    "Sale status transition is not allowed",
	},
	domainErrors.KindInvalidEventWindow: {
		HTTPStatus: http.StatusBadRequest,
		Message:    "Sales start must be before sales end",
	},
	domainErrors.KindValidationError: {
		HTTPStatus: http.StatusBadRequest,
		Message:    "Validation failed",
	},
	domainErrors.KindConflict: {
		HTTPStatus: http.StatusConflict,
		Message:    "Request conflicts with the current state",
	},
	domainErrors.KindStorageUnavailable: {
		HTTPStatus: http.StatusServiceUnavailable,
		Message:    "Storage unavailable, retry later",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	kind := domainErrors.Kind(err)
	mapping, ok := errorMappings[kind]
	if !ok {
		return http.StatusInternalServerError, Error(domainErrors.KindInternal, "Internal server error", nil)
	}
	return mapping.HTTPStatus, Error(kind, mapping.Message, errorDetails(err))
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, statusCode, errorResponse)
}

func errorDetails(err error) map[string]string {
	var (
		illegal    *domainErrors.IllegalTransitionError
		window     *domainErrors.SalesWindowError
		validation *domainErrors.ValidationError
	)

	switch {
	case errors.As(err, &illegal):
		return map[string]string{"from": illegal.From, "to": illegal.To}
	case errors.As(err, &window):
		return map[string]string{"reason": window.Reason}
	case errors.As(err, &validation):
		return map[string]string{"field": validation.Field, "reason": validation.Message}
	case domainErrors.Retryable(err):
		return map[string]string{"retryable": "true"}
	default:
		return nil
	}
}
