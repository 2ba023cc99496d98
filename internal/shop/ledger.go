package shop

import (
	"context"
	"fmt"

	"github.com/safar/shopkeeper/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the append-only history of committed sales.
type Ledger struct {
	store   SaleStore
	catalog *Catalog
	logger  *zap.Logger
	sales   []models.Sale
	index   map[string]int
}

func NewLedger(store SaleStore, catalog *Catalog, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		store:   store,
		catalog: catalog,
		logger:  logger,
		index:   make(map[string]int),
	}
}

// Load rebuilds sales from stored rows. Rows sharing a sale id form one
// sale, in the order the ids first appear. A row without a product id
// stands for a sale that sold nothing. Every other row is joined against
// the current catalog; rows whose product is gone are dropped.
func (l *Ledger) Load(ctx context.Context) error {
	records, err := l.store.LoadSaleRecords(ctx)
	if err != nil {
		return fmt.Errorf("load sales: %w", err)
	}

	l.sales = nil
	l.index = make(map[string]int)

	dropped := 0
	for _, rec := range records {
		i, ok := l.index[rec.SaleID]
		if !ok {
			i = len(l.sales)
			l.index[rec.SaleID] = i
			l.sales = append(l.sales, models.Sale{ID: rec.SaleID})
		}

		if rec.ProductID == "" {
			continue
		}

		if _, err := l.catalog.Lookup(rec.ProductID); err != nil {
			dropped++
			l.logger.Warn("dropping sale line for unknown product",
				zap.String("sale_id", rec.SaleID),
				zap.String("product_id", rec.ProductID),
				zap.Int("quantity_sold", rec.QuantitySold),
			)
			continue
		}

		l.sales[i].Items = append(l.sales[i].Items, lineItemFromRecord(rec))
	}

	l.logger.Debug("ledger loaded",
		zap.Int("sales", len(l.sales)),
		zap.Int("rows", len(records)),
		zap.Int("dropped", dropped),
	)
	return nil
}

func (l *Ledger) Save(ctx context.Context) error {
	if err := l.store.SaveSaleRecords(ctx, l.rows()); err != nil {
		return fmt.Errorf("save sales: %w", err)
	}
	return nil
}

// Record appends a finished sale and persists the ledger. If the save fails
// the sale is dropped again. Stock has already been deducted while the sale
// was assembled; Record does not touch it.
func (l *Ledger) Record(ctx context.Context, sale models.Sale) error {
	if sale.ID == "" {
		return fmt.Errorf("%w: sale id is required", ErrInvalidSale)
	}
	if l.Has(sale.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateSale, sale.ID)
	}

	committed := models.Sale{
		ID:    sale.ID,
		Items: append([]models.SaleLineItem(nil), sale.Items...),
	}
	l.index[committed.ID] = len(l.sales)
	l.sales = append(l.sales, committed)

	if err := l.Save(ctx); err != nil {
		l.sales = l.sales[:len(l.sales)-1]
		delete(l.index, committed.ID)
		return err
	}
	return nil
}

func (l *Ledger) Has(saleID string) bool {
	_, ok := l.index[saleID]
	return ok
}

func (l *Ledger) Report() []models.SaleRecord {
	records := make([]models.SaleRecord, 0, len(l.sales))
	for _, sale := range l.sales {
		records = append(records, sale.Records()...)
	}
	return records
}

// rows is what Save persists: the report plus one placeholder row for each
// sale without items.
func (l *Ledger) rows() []models.SaleRecord {
	records := make([]models.SaleRecord, 0, len(l.sales))
	for _, sale := range l.sales {
		if len(sale.Items) == 0 {
			records = append(records, models.SaleRecord{SaleID: sale.ID, TotalPrice: decimal.Zero})
			continue
		}
		records = append(records, sale.Records()...)
	}
	return records
}

func (l *Ledger) Sales() []models.Sale {
	sales := make([]models.Sale, 0, len(l.sales))
	for _, sale := range l.sales {
		sales = append(sales, models.Sale{
			ID:    sale.ID,
			Items: append([]models.SaleLineItem(nil), sale.Items...),
		})
	}
	return sales
}

// lineItemFromRecord keeps the stored total as the subtotal and derives the
// unit price from it for display.
func lineItemFromRecord(rec models.SaleRecord) models.SaleLineItem {
	item := models.SaleLineItem{
		ProductID:   rec.ProductID,
		ProductName: rec.ProductName,
		Quantity:    rec.QuantitySold,
		UnitPrice:   rec.TotalPrice,
		Subtotal:    rec.TotalPrice,
	}
	if rec.QuantitySold > 0 {
		item.UnitPrice = rec.TotalPrice.Div(decimal.NewFromInt(int64(rec.QuantitySold)))
	}
	return item
}
