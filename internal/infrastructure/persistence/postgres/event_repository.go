package postgres

import (
	"context"
	"database/sql"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/event"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
)

const eventColumns = `id, description, type, location, occurs_at, sales_start, sales_end,
	ROUND(price * 100)::BIGINT, created_at, updated_at`

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(conn *Connection) *EventRepository {
	return &EventRepository{
		db: conn.GetDB(),
	}
}

func (r *EventRepository) CreateEvent(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (id, description, type, location, occurs_at, sales_start, sales_end, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::BIGINT / 100.0, $9, $10)
	`

	_, err := monitoring.InstrumentExec(ctx, r.db, "INSERT", "events", query,
		e.ID, e.Description, string(e.Type), e.Location, e.OccursAt, e.SalesStart, e.SalesEnd,
		e.PriceCents, e.CreatedAt, e.UpdatedAt,
	)
	return classify("create event", err, domainErrors.ErrEventNotFound, nil)
}

func (r *EventRepository) GetEventByID(ctx context.Context, id string) (*event.Event, error) {
	if !generator.IsValidID(id) {
		return nil, domainErrors.ErrEventNotFound
	}

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "events", query, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, classify("get event", err, domainErrors.ErrEventNotFound, nil)
	}
	return e, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at, id`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "events", query)
	if err != nil {
		return nil, classify("list events", err, domainErrors.ErrEventNotFound, nil)
	}
	defer rows.Close()

	events := make([]*event.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, classify("list events", err, domainErrors.ErrEventNotFound, nil)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list events", err, domainErrors.ErrEventNotFound, nil)
	}
	return events, nil
}

func (r *EventRepository) UpdateEvent(ctx context.Context, e *event.Event) error {
	if !generator.IsValidID(e.ID) {
		return domainErrors.ErrEventNotFound
	}

	query := `
		UPDATE events
		SET description = $2, type = $3, location = $4, occurs_at = $5,
			sales_start = $6, sales_end = $7, price = $8::BIGINT / 100.0, updated_at = $9
		WHERE id = $1
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "UPDATE", "events", query,
		e.ID, e.Description, string(e.Type), e.Location, e.OccursAt, e.SalesStart, e.SalesEnd,
		e.PriceCents, e.UpdatedAt,
	)
	if err != nil {
		return classify("update event", err, domainErrors.ErrEventNotFound, nil)
	}
	return requireRow(result, "update event", domainErrors.ErrEventNotFound)
}

// DeleteEvent removes the event only when no sale references it. The
// NOT EXISTS guard and the RESTRICT foreign key cover the same rule; the
// key catches a sale inserted between the guard and the delete.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if !generator.IsValidID(id) {
		return domainErrors.ErrEventNotFound
	}

	query := `
		DELETE FROM events
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM sales WHERE event_id = $1)
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "DELETE", "events", query, id)
	if err != nil {
		return classify("delete event", err, domainErrors.ErrEventNotFound, map[string]error{
			codeForeignKeyViolation: domainErrors.ErrConflict,
		})
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domainErrors.NewStorageError("delete event", err)
	}
	if affected == 1 {
		return nil
	}

	var exists bool
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "events",
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		return classify("delete event", err, domainErrors.ErrEventNotFound, nil)
	}
	if exists {
		return domainErrors.ErrConflict
	}
	return domainErrors.ErrEventNotFound
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var (
		e   event.Event
		typ string
	)
	err := row.Scan(
		&e.ID, &e.Description, &typ, &e.Location, &e.OccursAt, &e.SalesStart, &e.SalesEnd,
		&e.PriceCents, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Type = event.Type(typ)
	e.OccursAt = e.OccursAt.UTC()
	e.SalesStart = e.SalesStart.UTC()
	e.SalesEnd = e.SalesEnd.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func requireRow(result sql.Result, op string, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return domainErrors.NewStorageError(op, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
