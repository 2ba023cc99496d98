package shop

import (
	"context"

	"github.com/safar/shopkeeper/internal/models"
)

// ProductStore persists the whole catalog. Save replaces everything
// previously stored; Load on a store that was never written returns no
// products and no error.
type ProductStore interface {
	LoadProducts(ctx context.Context) ([]models.Product, error)
	SaveProducts(ctx context.Context, products []models.Product) error
}

// SaleStore persists the ledger as flattened rows, in ledger order.
type SaleStore interface {
	LoadSaleRecords(ctx context.Context) ([]models.SaleRecord, error)
	SaveSaleRecords(ctx context.Context, records []models.SaleRecord) error
}
