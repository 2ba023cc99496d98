package pgstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/safar/shopkeeper/internal/database"
	"github.com/safar/shopkeeper/internal/models"
	"github.com/shopspring/decimal"
)

// Store keeps the catalog and the ledger in PostgreSQL. Like the file
// backend, each save replaces the table contents, inside one transaction.
type Store struct {
	db   *sqlx.DB
	opts database.TxOptions
}

func New(db *sqlx.DB) *Store {
	return &Store{
		db:   db,
		opts: database.DefaultTxOptions(),
	}
}

type productRow struct {
	ID       string          `db:"product_id"`
	Name     string          `db:"product_name"`
	Price    decimal.Decimal `db:"price"`
	Quantity int             `db:"quantity"`
}

type saleLineRow struct {
	SaleID       string          `db:"sale_id"`
	ProductID    string          `db:"product_id"`
	ProductName  string          `db:"product_name"`
	QuantitySold int             `db:"quantity_sold"`
	TotalPrice   decimal.Decimal `db:"total_price"`
}

func (s *Store) LoadProducts(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	query := `
		SELECT product_id, product_name, price, quantity
		FROM products
		ORDER BY position`

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, models.Product{
			ID:       r.ID,
			Name:     r.Name,
			Price:    r.Price,
			Quantity: r.Quantity,
		})
	}
	return products, nil
}

func (s *Store) SaveProducts(ctx context.Context, products []models.Product) error {
	return database.WithRetry(ctx, s.db, s.opts, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("clear products: %w", err)
		}

		return copyRows(ctx, tx, "products",
			[]string{"position", "product_id", "product_name", "price", "quantity"},
			len(products), func(i int) []any {
				p := products[i]
				return []any{i, p.ID, p.Name, p.Price, p.Quantity}
			})
	})
}

func (s *Store) LoadSaleRecords(ctx context.Context) ([]models.SaleRecord, error) {
	var rows []saleLineRow
	query := `
		SELECT sale_id, product_id, product_name, quantity_sold, total_price
		FROM sale_lines
		ORDER BY line_no`

	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}

	records := make([]models.SaleRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.SaleRecord{
			SaleID:       r.SaleID,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			QuantitySold: r.QuantitySold,
			TotalPrice:   r.TotalPrice,
		})
	}
	return records, nil
}

func (s *Store) SaveSaleRecords(ctx context.Context, records []models.SaleRecord) error {
	return database.WithRetry(ctx, s.db, s.opts, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sale_lines`); err != nil {
			return fmt.Errorf("clear sale lines: %w", err)
		}

		return copyRows(ctx, tx, "sale_lines",
			[]string{"line_no", "sale_id", "product_id", "product_name", "quantity_sold", "total_price"},
			len(records), func(i int) []any {
				r := records[i]
				return []any{i, r.SaleID, r.ProductID, r.ProductName, r.QuantitySold, r.TotalPrice}
			})
	})
}

// copyRows bulk loads n rows into table with COPY FROM STDIN.
func copyRows(ctx context.Context, tx *sqlx.Tx, table string, columns []string, n int, row func(int) []any) error {
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		return fmt.Errorf("prepare copy into %s: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, row(i)...); err != nil {
			return fmt.Errorf("copy row %d into %s: %w", i, table, err)
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy into %s: %w", table, err)
	}
	return nil
}
