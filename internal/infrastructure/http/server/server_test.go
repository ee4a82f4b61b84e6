package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/eventsales-service/internal/application/commands"
	"github.com/yuzvak/eventsales-service/internal/application/ports"
	"github.com/yuzvak/eventsales-service/internal/application/queries"
	"github.com/yuzvak/eventsales-service/internal/application/use_cases"
	"github.com/yuzvak/eventsales-service/internal/config"
	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/user"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/handlers"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/http/response"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/persistence/memory"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/users"
	"github.com/yuzvak/eventsales-service/internal/pkg/clock"
	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
)

type testAPI struct {
	handler http.Handler
	clock   *clock.MockClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logger.Nop()
	store := memory.NewStore()
	clk := clock.NewMockClock(time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC))
	ids := generator.NewUUIDGenerator()
	directory := users.NewStaticDirectory(user.Summary{ID: "user-1", Name: "Ana", Email: "ana@example.com"})

	catalog := use_cases.NewEventCatalog(store, nil, clk, ids, log)
	lifecycle := use_cases.NewSaleLifecycle(store, store, clk, ids, log)
	listing := queries.NewListing(store, store, directory, clk, log)
	metrics := ports.NopLifecycleMetrics{}

	srv := NewServer(config.Default(), Handlers{
		Events: handlers.NewEventHandler(catalog, listing, log),
		Sales: handlers.NewSaleHandler(
			commands.NewCreateSaleHandler(lifecycle, metrics, log),
			commands.NewUpdateSaleStatusHandler(lifecycle, metrics, log),
			lifecycle,
			listing,
			log,
		),
		Health: handlers.NewHealthHandler(nil, log),
	}, log)

	return &testAPI{handler: srv.Handler(), clock: clk}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func concertPayload() map[string]interface{} {
	return map[string]interface{}{
		"description":   "Concert",
		"type":          "SHOW",
		"location":      "Arena",
		"dateTime":      "2025-01-15T20:00",
		"startingSales": "2025-01-01T00:00",
		"endingSales":   "2025-01-10T00:00",
		"price":         120.5,
	}
}

func (a *testAPI) createEvent(t *testing.T) handlers.EventResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/events", concertPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handlers.EventResponse](t, rec)
}

func (a *testAPI) createSale(t *testing.T, eventID string) handlers.SaleResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/sales", map[string]string{"userId": "user-1", "eventId": eventID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handlers.SaleResponse](t, rec)
}

func TestAPI_EventCRUD(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/events", concertPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[handlers.EventResponse](t, rec)
	assert.Equal(t, "/events/"+created.ID, rec.Header().Get("Location"))
	assert.Equal(t, "SHOW", created.Type)
	assert.Equal(t, 120.5, created.Price)
	assert.Equal(t, "2025-01-15T20:00:00Z", created.DateTime)
	assert.Equal(t, "2025-01-05T12:00:00Z", created.CreatedAt)

	rec = api.do(t, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]handlers.EventResponse](t, rec)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Active)
	assert.True(t, *listed[0].Active)

	rec = api.do(t, http.MethodPatch, "/events/"+created.ID, map[string]interface{}{"description": "Late show", "price": 99.99})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[handlers.EventResponse](t, rec)
	assert.Equal(t, "Late show", patched.Description)
	assert.Equal(t, 99.99, patched.Price)
	assert.Equal(t, "Arena", patched.Location)

	rec = api.do(t, http.MethodPut, "/events/"+created.ID, map[string]interface{}{"description": "Only this"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/sales/events/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Late show", decode[handlers.EventResponse](t, rec).Description)

	rec = api.do(t, http.MethodDelete, "/events/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/events/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domainErrors.KindEventNotFound, decode[response.ErrorResponse](t, rec).Error.Kind)
}

func TestAPI_CreateEventValidation(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		mutate func(map[string]interface{})
		kind   string
		field  string
	}{
		{"missing price", func(p map[string]interface{}) { delete(p, "price") }, domainErrors.KindValidationError, "price"},
		{"unknown type", func(p map[string]interface{}) { p["type"] = "OPERA" }, domainErrors.KindValidationError, "type"},
		{"bad timestamp", func(p map[string]interface{}) { p["dateTime"] = "tomorrow" }, domainErrors.KindValidationError, "dateTime"},
		{"negative price", func(p map[string]interface{}) { p["price"] = -1 }, domainErrors.KindValidationError, "price"},
		{"price above column range", func(p map[string]interface{}) { p["price"] = 1e12 }, domainErrors.KindValidationError, "price"},
		{"price above int64 range", func(p map[string]interface{}) { p["price"] = 1e17 }, domainErrors.KindValidationError, "price"},
		{"sub-cent price", func(p map[string]interface{}) { p["price"] = 1.005 }, domainErrors.KindValidationError, "price"},
		{"inverted window", func(p map[string]interface{}) { p["startingSales"] = "2025-01-11T00:00" }, domainErrors.KindInvalidEventWindow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := concertPayload()
			tt.mutate(payload)

			rec := api.do(t, http.MethodPost, "/events", payload)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decode[response.ErrorResponse](t, rec)
			assert.Equal(t, tt.kind, body.Error.Kind)
			if tt.field != "" {
				assert.Equal(t, tt.field, body.Error.Details["field"])
			}
		})
	}

	rec := api.do(t, http.MethodPost, "/events", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/events", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_FractionalSecondsMatchDisplayedWindow(t *testing.T) {
	api := newTestAPI(t)

	payload := concertPayload()
	payload["endingSales"] = "2025-01-10T00:00:00.500Z"
	rec := api.do(t, http.MethodPost, "/events", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ev := decode[handlers.EventResponse](t, rec)
	assert.Equal(t, "2025-01-10T00:00:00Z", ev.EndingSales)

	// Past the displayed end the window is closed, even inside the dropped fraction.
	api.clock.Set(time.Date(2025, 1, 10, 0, 0, 0, 250_000_000, time.UTC))
	rec = api.do(t, http.MethodPost, "/sales", map[string]string{"userId": "user-1", "eventId": ev.ID})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, domainErrors.KindSalesWindowClosed, decode[response.ErrorResponse](t, rec).Error.Kind)
}

func TestAPI_SaleLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ev := api.createEvent(t)

	s := api.createSale(t, ev.ID)
	assert.Equal(t, "EM_ABERTO", s.Status)
	assert.Equal(t, "2025-01-05T12:00:00Z", s.DateTime)

	rec := api.do(t, http.MethodPut, "/sales/"+s.ID, map[string]string{"status": "PAGO"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PAGO", decode[handlers.SaleResponse](t, rec).Status)

	rec = api.do(t, http.MethodPut, "/sales/"+s.ID, map[string]string{"status": "PAGO"})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, domainErrors.KindIllegalTransition, body.Error.Kind)
	assert.Equal(t, map[string]string{"from": "PAGO", "to": "PAGO"}, body.Error.Details)

	rec = api.do(t, http.MethodPut, "/sales/"+s.ID, map[string]string{"status": "REFUNDED"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode[response.ErrorResponse](t, rec).Error.Details["field"])

	rec = api.do(t, http.MethodPatch, "/sales/"+s.ID, map[string]string{"status": "used"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "UTILIZADO", decode[handlers.SaleResponse](t, rec).Status)

	rec = api.do(t, http.MethodGet, "/sales/"+s.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "UTILIZADO", decode[handlers.SaleResponse](t, rec).Status)

	rec = api.do(t, http.MethodPut, "/sales/missing", map[string]string{"status": "PAGO"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SaleAdmission(t *testing.T) {
	api := newTestAPI(t)
	ev := api.createEvent(t)

	rec := api.do(t, http.MethodPost, "/sales", map[string]string{"userId": "user-1", "eventId": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domainErrors.KindEventNotFound, decode[response.ErrorResponse](t, rec).Error.Kind)

	rec = api.do(t, http.MethodPost, "/sales", map[string]string{"eventId": ev.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	api.clock.Set(time.Date(2025, 1, 10, 0, 0, 1, 0, time.UTC))
	rec = api.do(t, http.MethodPost, "/sales", map[string]string{"userId": "user-1", "eventId": ev.ID})
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, domainErrors.KindSalesWindowClosed, body.Error.Kind)
	assert.Equal(t, domainErrors.WindowAlreadyClosed, body.Error.Details["reason"])
}

func TestAPI_ListSalesWithContext(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	ev := api.createEvent(t)
	api.createSale(t, ev.ID)

	rec = api.do(t, http.MethodGet, "/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sales := decode[[]handlers.SaleResponse](t, rec)
	require.Len(t, sales, 1)
	require.NotNil(t, sales[0].EventFound)
	assert.True(t, *sales[0].EventFound)
	require.NotNil(t, sales[0].Event)
	assert.Equal(t, "Concert", sales[0].Event.Description)
	require.NotNil(t, sales[0].User)
	assert.True(t, sales[0].User.Found)
	assert.Equal(t, "Ana", sales[0].User.Name)
}

func TestAPI_DeleteEventWithSales(t *testing.T) {
	api := newTestAPI(t)
	ev := api.createEvent(t)
	s := api.createSale(t, ev.ID)

	rec := api.do(t, http.MethodDelete, "/events/"+ev.ID, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domainErrors.KindConflict, decode[response.ErrorResponse](t, rec).Error.Kind)

	rec = api.do(t, http.MethodDelete, "/sales/"+s.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/events/"+ev.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAPI_Infrastructure(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[handlers.HealthData](t, rec)
	assert.Equal(t, "UP", health.Status)

	rec = api.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodOptions, "/sales", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	rec = api.do(t, http.MethodPost, "/sales/some-id", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
