package csvstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/safar/shopkeeper/internal/models"
	"github.com/safar/shopkeeper/internal/shop"
	"github.com/safar/shopkeeper/internal/store/csvstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*csvstore.Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	inventory := filepath.Join(dir, "inventory.csv")
	sales := filepath.Join(dir, "sales.csv")
	return csvstore.New(inventory, sales), inventory, sales
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMissingFilesLoadEmpty(t *testing.T) {
	store, _, _ := newStore(t)
	ctx := context.Background()

	products, err := store.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	records, err := store.LoadSaleRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveProductsWritesHeaderAndRows(t *testing.T) {
	store, inventory, _ := newStore(t)

	err := store.SaveProducts(context.Background(), []models.Product{
		{ID: "P1", Name: "Widget", Price: decimal.RequireFromString("2.50"), Quantity: 10},
		{ID: "P2", Name: "Gadget, large", Price: decimal.RequireFromString("19.99"), Quantity: 0},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(inventory)
	require.NoError(t, err)
	assert.Equal(t,
		"product_id,product_name,price,quantity\n"+
			"P1,Widget,2.5,10\n"+
			"P2,\"Gadget, large\",19.99,0\n",
		string(content))
}

func TestProductsRoundTrip(t *testing.T) {
	store, _, _ := newStore(t)
	ctx := context.Background()

	want := []models.Product{
		{ID: "P1", Name: "Widget", Price: decimal.RequireFromString("2.5"), Quantity: 10},
		{ID: "P2", Name: "Gadget \"Pro\"", Price: decimal.RequireFromString("0.05"), Quantity: 3},
		{ID: "P3", Name: "Free sample", Price: decimal.RequireFromString("0"), Quantity: 100},
	}
	require.NoError(t, store.SaveProducts(ctx, want))

	got, err := store.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Truef(t, want[i].Price.Equal(got[i].Price), "price %s != %s", want[i].Price, got[i].Price)
	}
}

func TestSaveOverwritesWholesale(t *testing.T) {
	store, _, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProducts(ctx, []models.Product{
		{ID: "P1", Name: "Widget", Price: decimal.RequireFromString("1"), Quantity: 1},
		{ID: "P2", Name: "Gadget", Price: decimal.RequireFromString("1"), Quantity: 1},
	}))
	require.NoError(t, store.SaveProducts(ctx, []models.Product{
		{ID: "P3", Name: "Doohickey", Price: decimal.RequireFromString("1"), Quantity: 1},
	}))

	got, err := store.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P3", got[0].ID)
}

func TestSaleRecordsRoundTrip(t *testing.T) {
	store, _, sales := newStore(t)
	ctx := context.Background()

	want := []models.SaleRecord{
		{SaleID: "S1", ProductID: "P1", ProductName: "Widget", QuantitySold: 4, TotalPrice: decimal.RequireFromString("10.00")},
		{SaleID: "S1", ProductID: "P2", ProductName: "Gadget", QuantitySold: 1, TotalPrice: decimal.RequireFromString("19.99")},
		{SaleID: "S2", ProductID: "P1", ProductName: "Widget", QuantitySold: 2, TotalPrice: decimal.RequireFromString("5")},
	}
	require.NoError(t, store.SaveSaleRecords(ctx, want))

	content, err := os.ReadFile(sales)
	require.NoError(t, err)
	assert.Contains(t, string(content), "sale_id,product_id,product_name,quantity_sold,total_price\n")
	assert.Contains(t, string(content), "S1,P1,Widget,4,10\n")

	got, err := store.LoadSaleRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].SaleID, got[i].SaleID)
		assert.Equal(t, want[i].ProductID, got[i].ProductID)
		assert.Equal(t, want[i].ProductName, got[i].ProductName)
		assert.Equal(t, want[i].QuantitySold, got[i].QuantitySold)
		assert.True(t, want[i].TotalPrice.Equal(got[i].TotalPrice))
	}
}

func TestLoadAcceptsReorderedColumnsAndFloatText(t *testing.T) {
	store, inventory, sales := newStore(t)
	ctx := context.Background()

	writeFile(t, inventory, "quantity,price,product_name,product_id\n6,2.5,Widget,P1\n")
	writeFile(t, sales, "sale_id,product_id,product_name,quantity_sold,total_price\nS1,P1,Widget,4,10.0\n")

	products, err := store.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.Product{ID: "P1", Name: "Widget", Price: products[0].Price, Quantity: 6}, products[0])
	assert.Equal(t, "2.5", products[0].Price.String())

	records, err := store.LoadSaleRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "10", records[0].TotalPrice.String())
}

func TestHeaderOnlyAndEmptyFilesLoadEmpty(t *testing.T) {
	store, inventory, sales := newStore(t)
	ctx := context.Background()

	writeFile(t, inventory, "product_id,product_name,price,quantity\n")
	writeFile(t, sales, "")

	products, err := store.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	records, err := store.LoadSaleRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMalformedRowsAbortLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
		column  string
	}{
		{
			name:    "non-numeric price",
			content: "product_id,product_name,price,quantity\nP1,Widget,2.5,10\nP2,Gadget,cheap,1\n",
			line:    3,
			column:  "price",
		},
		{
			name:    "fractional quantity",
			content: "product_id,product_name,price,quantity\nP1,Widget,2.5,1.5\n",
			line:    2,
			column:  "quantity",
		},
		{
			name:    "negative quantity",
			content: "product_id,product_name,price,quantity\nP1,Widget,2.5,-1\n",
			line:    2,
			column:  "quantity",
		},
		{
			name:    "negative price",
			content: "product_id,product_name,price,quantity\nP1,Widget,-0.01,1\n",
			line:    2,
			column:  "price",
		},
		{
			name:    "empty product id",
			content: "product_id,product_name,price,quantity\nP1,Widget,1,1\n,Nameless,1,1\n",
			line:    3,
			column:  "product_id",
		},
		{
			name:    "missing column",
			content: "product_id,product_name,price\nP1,Widget,2.5\n",
			line:    1,
			column:  "quantity",
		},
		{
			name:    "short row",
			content: "product_id,product_name,price,quantity\nP1,Widget\n",
			line:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, inventory, _ := newStore(t)
			writeFile(t, inventory, tt.content)

			products, err := store.LoadProducts(context.Background())
			require.Error(t, err)
			assert.Nil(t, products)
			assert.ErrorIs(t, err, shop.ErrMalformedRow)

			var rowErr *shop.RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, inventory, rowErr.File)
			assert.Equal(t, tt.line, rowErr.Line)
			assert.Equal(t, tt.column, rowErr.Column)
		})
	}
}

func TestMalformedSaleRowAbortsLoad(t *testing.T) {
	store, _, sales := newStore(t)
	writeFile(t, sales, "sale_id,product_id,product_name,quantity_sold,total_price\nS1,P1,Widget,four,10\n")

	_, err := store.LoadSaleRecords(context.Background())
	assert.ErrorIs(t, err, shop.ErrMalformedRow)
}

func TestSaveRespectsCancelledContext(t *testing.T) {
	store, inventory, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.SaveProducts(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(inventory)
	assert.True(t, os.IsNotExist(statErr))
}

func TestServiceOverCSVStore(t *testing.T) {
	store, _, _ := newStore(t)
	ctx := context.Background()

	svc, err := shop.New(ctx, store, store, nil)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "P1", "Widget", decimal.RequireFromString("2.50"), 10)
	require.NoError(t, err)
	_, err = svc.SellProducts(ctx, "S1", []shop.SaleItem{{ProductID: "P1", Quantity: 4}})
	require.NoError(t, err)
	_, err = svc.SellProducts(ctx, "S2", []shop.SaleItem{{ProductID: "P1", Quantity: 999}})
	require.NoError(t, err)

	reloaded, err := shop.New(ctx, store, store, nil)
	require.NoError(t, err)
	assert.True(t, reloaded.HasSale("S2"), "an empty sale survives the file round trip")
	assert.Len(t, reloaded.Sales(), 2)

	inventory := reloaded.InventoryView()
	require.Len(t, inventory, 1)
	assert.Equal(t, 6, inventory[0].Quantity)

	report := reloaded.SalesReport()
	require.Len(t, report, 1)
	assert.Equal(t, "S1", report[0].SaleID)
	assert.Equal(t, 4, report[0].QuantitySold)
	assert.Equal(t, "10", report[0].TotalPrice.String())
}
