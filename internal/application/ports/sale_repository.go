package ports

import (
	"context"
	"time"

	"github.com/yuzvak/eventsales-service/internal/domain/sale"
)

type SaleRepository interface {
	// CreateSale fails with ErrEventNotFound when the referenced event is gone.
	CreateSale(ctx context.Context, s *sale.Sale) error
	GetSaleByID(ctx context.Context, id string) (*sale.Sale, error)
	ListSales(ctx context.Context) ([]*sale.Sale, error)

	// CompareAndSetStatus writes to only while the stored status is still from.
	// It reports false, without error, when another writer got there first.
	CompareAndSetStatus(ctx context.Context, id string, from, to sale.Status, updatedAt time.Time) (bool, error)

	DeleteSale(ctx context.Context, id string) error
}
