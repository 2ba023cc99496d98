package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/safar/shopkeeper/internal/metrics"
	"github.com/safar/shopkeeper/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SaleItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SkippedItem struct {
	Item   SaleItem
	Reason error
}

type SaleResult struct {
	Sale    models.Sale
	Skipped []SkippedItem
}

// Service is the entry point for front ends. All methods are safe for
// concurrent use; one mutex covers the whole catalog and ledger.
type Service struct {
	mu      sync.Mutex
	catalog *Catalog
	ledger  *Ledger
	logger  *zap.Logger
}

// New builds the catalog and ledger and loads both from their stores. The
// catalog is loaded first because the ledger joins its rows against it.
func New(ctx context.Context, products ProductStore, sales SaleStore, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := NewCatalog(products, logger.Named("catalog"))
	if err := catalog.Load(ctx); err != nil {
		return nil, err
	}

	ledger := NewLedger(sales, catalog, logger.Named("ledger"))
	if err := ledger.Load(ctx); err != nil {
		return nil, err
	}

	return &Service{
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
	}, nil
}

func (s *Service) AddProduct(ctx context.Context, id, name string, price decimal.Decimal, quantity int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := models.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Quantity: quantity,
	}
	if err := s.catalog.Add(ctx, product); err != nil {
		return models.Product{}, fmt.Errorf("add product: %w", err)
	}

	metrics.ProductsAddedTotal.Inc()
	s.logger.Info("product added",
		zap.String("product_id", id),
		zap.String("price", price.String()),
		zap.Int("quantity", quantity),
	)
	return product, nil
}

// SellProducts assembles and commits a sale. Items are deducted in order;
// an item that cannot be deducted is reported in the result and skipped
// without aborting the sale. The sale is recorded even if every item was
// skipped. Returned errors are validation or persistence failures only; on
// a persistence failure the deductions are undone.
func (s *Service) SellProducts(ctx context.Context, saleID string, items []SaleItem) (*SaleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if saleID == "" {
		return nil, fmt.Errorf("sell products: %w: sale id is required", ErrInvalidSale)
	}
	if s.ledger.Has(saleID) {
		return nil, fmt.Errorf("sell products: %w: %s", ErrDuplicateSale, saleID)
	}

	result := &SaleResult{Sale: models.Sale{ID: saleID}}
	for _, item := range items {
		if err := s.catalog.Deduct(item.ProductID, item.Quantity); err != nil {
			result.Skipped = append(result.Skipped, SkippedItem{Item: item, Reason: err})
			metrics.SaleItemsSkippedTotal.WithLabelValues(skipReason(err)).Inc()
			s.logger.Warn("sale item skipped",
				zap.String("sale_id", saleID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			continue
		}

		product, _ := s.catalog.Lookup(item.ProductID)
		result.Sale.Items = append(result.Sale.Items, models.NewSaleLineItem(product, item.Quantity))
	}

	if err := s.catalog.Save(ctx); err != nil {
		s.undoDeductions(result.Sale)
		return nil, fmt.Errorf("sell products: %w", err)
	}
	if err := s.ledger.Record(ctx, result.Sale); err != nil {
		s.undoDeductions(result.Sale)
		if saveErr := s.catalog.Save(ctx); saveErr != nil {
			s.logger.Error("restoring stock after failed sale",
				zap.String("sale_id", saleID),
				zap.Error(saveErr),
			)
		}
		return nil, fmt.Errorf("sell products: %w", err)
	}

	metrics.SalesRecordedTotal.Inc()
	for _, item := range result.Sale.Items {
		metrics.UnitsSoldTotal.Add(float64(item.Quantity))
	}
	s.logger.Info("sale recorded",
		zap.String("sale_id", saleID),
		zap.Int("items", len(result.Sale.Items)),
		zap.Int("skipped", len(result.Skipped)),
		zap.String("total", result.Sale.Total().String()),
	)
	return result, nil
}

func (s *Service) undoDeductions(sale models.Sale) {
	for _, item := range sale.Items {
		s.catalog.restock(item.ProductID, item.Quantity)
	}
}

func (s *Service) Product(id string) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Lookup(id)
}

func (s *Service) InventoryView() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.List()
}

func (s *Service) SalesReport() []models.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Report()
}

func (s *Service) Sales() []models.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Sales()
}

func (s *Service) HasSale(saleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Has(saleID)
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	default:
		return "other"
	}
}
