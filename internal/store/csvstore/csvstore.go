package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/safar/shopkeeper/internal/models"
	"github.com/safar/shopkeeper/internal/shop"
	"github.com/shopspring/decimal"
)

var (
	ProductColumns = []string{"product_id", "product_name", "price", "quantity"}
	SaleColumns    = []string{"sale_id", "product_id", "product_name", "quantity_sold", "total_price"}
)

// Store keeps the catalog and the ledger in two comma-delimited files with
// a header row. Every save rewrites the whole file.
type Store struct {
	inventoryPath string
	salesPath     string
}

func New(inventoryPath, salesPath string) *Store {
	return &Store{
		inventoryPath: inventoryPath,
		salesPath:     salesPath,
	}
}

func (s *Store) LoadProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product

	err := readRows(ctx, s.inventoryPath, ProductColumns, func(row rowReader) error {
		if row.get("product_id") == "" {
			return row.fail("product_id", errors.New("must not be empty"))
		}
		price, err := row.parseDecimal("price")
		if err != nil {
			return err
		}
		if price.IsNegative() {
			return row.fail("price", errors.New("must not be negative"))
		}
		quantity, err := row.parseInt("quantity")
		if err != nil {
			return err
		}
		if quantity < 0 {
			return row.fail("quantity", errors.New("must not be negative"))
		}

		products = append(products, models.Product{
			ID:       row.get("product_id"),
			Name:     row.get("product_name"),
			Price:    price,
			Quantity: quantity,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) SaveProducts(ctx context.Context, products []models.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			p.Price.String(),
			strconv.Itoa(p.Quantity),
		})
	}
	return writeRows(ctx, s.inventoryPath, ProductColumns, rows)
}

func (s *Store) LoadSaleRecords(ctx context.Context) ([]models.SaleRecord, error) {
	var records []models.SaleRecord

	err := readRows(ctx, s.salesPath, SaleColumns, func(row rowReader) error {
		quantity, err := row.parseInt("quantity_sold")
		if err != nil {
			return err
		}
		total, err := row.parseDecimal("total_price")
		if err != nil {
			return err
		}

		records = append(records, models.SaleRecord{
			SaleID:       row.get("sale_id"),
			ProductID:    row.get("product_id"),
			ProductName:  row.get("product_name"),
			QuantitySold: quantity,
			TotalPrice:   total,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Store) SaveSaleRecords(ctx context.Context, records []models.SaleRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SaleID,
			r.ProductID,
			r.ProductName,
			strconv.Itoa(r.QuantitySold),
			r.TotalPrice.String(),
		})
	}
	return writeRows(ctx, s.salesPath, SaleColumns, rows)
}

// readRows opens path and calls fn for every data row. A missing file is an
// empty store. Columns are matched by header name, so their order in the
// file does not matter.
func readRows(ctx context.Context, path string, columns []string, fn func(rowReader) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return &shop.RowError{File: path, Line: 1, Err: err}
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}
	for _, col := range columns {
		if _, ok := positions[col]; !ok {
			return &shop.RowError{File: path, Line: 1, Column: col, Err: errors.New("missing from header")}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return &shop.RowError{File: path, Line: line, Err: err}
		}
		line, _ := r.FieldPos(0)

		if len(record) != len(header) {
			return &shop.RowError{
				File: path,
				Line: line,
				Err:  fmt.Errorf("expected %d fields, got %d", len(header), len(record)),
			}
		}

		if err := fn(rowReader{path: path, line: line, positions: positions, record: record}); err != nil {
			return err
		}
	}
}

// writeRows replaces path atomically: rows go to a temp file in the same
// directory which is then renamed over the target.
func writeRows(ctx context.Context, path string, columns []string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write rows: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

type rowReader struct {
	path      string
	line      int
	positions map[string]int
	record    []string
}

func (r rowReader) get(column string) string {
	return r.record[r.positions[column]]
}

func (r rowReader) parseInt(column string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(r.get(column)))
	if err != nil {
		return 0, r.fail(column, err)
	}
	return v, nil
}

func (r rowReader) parseDecimal(column string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(r.get(column)))
	if err != nil {
		return decimal.Decimal{}, r.fail(column, err)
	}
	return v, nil
}

func (r rowReader) fail(column string, err error) error {
	return &shop.RowError{File: r.path, Line: r.line, Column: column, Err: err}
}
