// Package shoptest provides an in-memory store for exercising the shop
// service without touching disk.
package shoptest

import (
	"context"
	"sync"

	"github.com/safar/shopkeeper/internal/models"
)

// MemStore satisfies shop.ProductStore and shop.SaleStore.
type MemStore struct {
	mu       sync.Mutex
	products []models.Product
	records  []models.SaleRecord

	ProductSaves int
	SaleSaves    int
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) LoadProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Product(nil), m.products...), nil
}

func (m *MemStore) SaveProducts(ctx context.Context, products []models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append([]models.Product(nil), products...)
	m.ProductSaves++
	return nil
}

func (m *MemStore) LoadSaleRecords(ctx context.Context) ([]models.SaleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SaleRecord(nil), m.records...), nil
}

func (m *MemStore) SaveSaleRecords(ctx context.Context, records []models.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.SaleRecord(nil), records...)
	m.SaleSaves++
	return nil
}

// Products returns what was last saved.
func (m *MemStore) Products() []models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Product(nil), m.products...)
}

// Records returns what was last saved.
func (m *MemStore) Records() []models.SaleRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SaleRecord(nil), m.records...)
}
