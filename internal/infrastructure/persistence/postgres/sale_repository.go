package postgres

import (
	"context"
	"database/sql"
	"time"

	domainErrors "github.com/yuzvak/eventsales-service/internal/domain/errors"
	"github.com/yuzvak/eventsales-service/internal/domain/sale"
	"github.com/yuzvak/eventsales-service/internal/infrastructure/monitoring"
	"github.com/yuzvak/eventsales-service/internal/pkg/generator"
)

const saleColumns = `id, user_id, event_id, date_time, status, created_at, updated_at`

type SaleRepository struct {
	db *sql.DB
}

func NewSaleRepository(conn *Connection) *SaleRepository {
	return &SaleRepository{
		db: conn.GetDB(),
	}
}

func (r *SaleRepository) CreateSale(ctx context.Context, s *sale.Sale) error {
	if !generator.IsValidID(s.EventID) {
		return domainErrors.ErrEventNotFound
	}

	query := `
		INSERT INTO sales (id, user_id, event_id, date_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := monitoring.InstrumentExec(ctx, r.db, "INSERT", "sales", query,
		s.ID, s.UserID, s.EventID, s.DateTime, string(s.Status), s.CreatedAt, s.UpdatedAt,
	)
	return classify("create sale", err, domainErrors.ErrSaleNotFound, map[string]error{
		codeForeignKeyViolation: domainErrors.ErrEventNotFound,
	})
}

func (r *SaleRepository) GetSaleByID(ctx context.Context, id string) (*sale.Sale, error) {
	if !generator.IsValidID(id) {
		return nil, domainErrors.ErrSaleNotFound
	}

	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "sales", query, id)
	s, err := scanSale(row)
	if err != nil {
		return nil, classify("get sale", err, domainErrors.ErrSaleNotFound, nil)
	}
	return s, nil
}

func (r *SaleRepository) ListSales(ctx context.Context) ([]*sale.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales ORDER BY date_time, id`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "sales", query)
	if err != nil {
		return nil, classify("list sales", err, domainErrors.ErrSaleNotFound, nil)
	}
	defer rows.Close()

	sales := make([]*sale.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, classify("list sales", err, domainErrors.ErrSaleNotFound, nil)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list sales", err, domainErrors.ErrSaleNotFound, nil)
	}
	return sales, nil
}

// CompareAndSetStatus is a single conditional UPDATE, so the status check and
// the write happen under the row lock Postgres takes for the update.
func (r *SaleRepository) CompareAndSetStatus(ctx context.Context, id string, from, to sale.Status, updatedAt time.Time) (bool, error) {
	if !generator.IsValidID(id) {
		return false, domainErrors.ErrSaleNotFound
	}

	query := `
		UPDATE sales
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "UPDATE", "sales", query,
		id, string(from), string(to), updatedAt.UTC(),
	)
	if err != nil {
		return false, classify("update sale status", err, domainErrors.ErrSaleNotFound, nil)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, domainErrors.NewStorageError("update sale status", err)
	}
	if affected == 1 {
		return true, nil
	}

	var exists bool
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "sales",
		`SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, id)
	if err := row.Scan(&exists); err != nil {
		return false, classify("update sale status", err, domainErrors.ErrSaleNotFound, nil)
	}
	if !exists {
		return false, domainErrors.ErrSaleNotFound
	}
	return false, nil
}

func (r *SaleRepository) DeleteSale(ctx context.Context, id string) error {
	if !generator.IsValidID(id) {
		return domainErrors.ErrSaleNotFound
	}

	result, err := monitoring.InstrumentExec(ctx, r.db, "DELETE", "sales",
		`DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return classify("delete sale", err, domainErrors.ErrSaleNotFound, nil)
	}
	return requireRow(result, "delete sale", domainErrors.ErrSaleNotFound)
}

func scanSale(row rowScanner) (*sale.Sale, error) {
	var (
		s      sale.Sale
		status string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.EventID, &s.DateTime, &status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Status = sale.Status(status)
	s.DateTime = s.DateTime.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
