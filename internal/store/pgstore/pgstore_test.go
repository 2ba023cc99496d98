//go:build integration

package pgstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/safar/shopkeeper/internal/models"
	"github.com/safar/shopkeeper/internal/shop"
	"github.com/safar/shopkeeper/internal/store/pgstore"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:14-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pgstore.Migrate(db.DB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			t.Logf("Failed to close database: %v", err)
		}
		if err := postgres.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func TestProductsRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.New(db)

	products, err := store.LoadProducts(ctx)
	if err != nil {
		t.Fatalf("Load empty products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("Expected no products, got %d", len(products))
	}

	want := []models.Product{
		{ID: "P2", Name: "Gadget", Price: decimal.RequireFromString("19.99"), Quantity: 1},
		{ID: "P1", Name: "Widget", Price: decimal.RequireFromString("2.50"), Quantity: 10},
	}
	if err := store.SaveProducts(ctx, want); err != nil {
		t.Fatalf("Save products: %v", err)
	}

	got, err := store.LoadProducts(ctx)
	if err != nil {
		t.Fatalf("Load products: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d products, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name || got[i].Quantity != want[i].Quantity {
			t.Errorf("Product %d: expected %+v, got %+v", i, want[i], got[i])
		}
		if !got[i].Price.Equal(want[i].Price) {
			t.Errorf("Product %d: expected price %s, got %s", i, want[i].Price, got[i].Price)
		}
	}

	if err := store.SaveProducts(ctx, want[:1]); err != nil {
		t.Fatalf("Save shorter catalog: %v", err)
	}
	got, err = store.LoadProducts(ctx)
	if err != nil {
		t.Fatalf("Load products: %v", err)
	}
	if len(got) != 1 || got[0].ID != "P2" {
		t.Errorf("Expected save to replace the catalog, got %+v", got)
	}
}

func TestSaleRecordsRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.New(db)

	want := []models.SaleRecord{
		{SaleID: "S1", ProductID: "P1", ProductName: "Widget", QuantitySold: 4, TotalPrice: decimal.RequireFromString("10.00")},
		{SaleID: "S1", ProductID: "P2", ProductName: "Gadget", QuantitySold: 1, TotalPrice: decimal.RequireFromString("19.99")},
		{SaleID: "S2", ProductID: "P1", ProductName: "Widget", QuantitySold: 2, TotalPrice: decimal.RequireFromString("5")},
	}
	if err := store.SaveSaleRecords(ctx, want); err != nil {
		t.Fatalf("Save sale records: %v", err)
	}

	got, err := store.LoadSaleRecords(ctx)
	if err != nil {
		t.Fatalf("Load sale records: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].SaleID != want[i].SaleID || got[i].ProductID != want[i].ProductID || got[i].QuantitySold != want[i].QuantitySold {
			t.Errorf("Record %d: expected %+v, got %+v", i, want[i], got[i])
		}
		if !got[i].TotalPrice.Equal(want[i].TotalPrice) {
			t.Errorf("Record %d: expected total %s, got %s", i, want[i].TotalPrice, got[i].TotalPrice)
		}
	}
}

func TestNegativeStockRejectedByConstraint(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := pgstore.New(db).SaveProducts(context.Background(), []models.Product{
		{ID: "P1", Name: "Widget", Price: decimal.NewFromInt(1), Quantity: -1},
	})
	if err == nil {
		t.Fatal("Expected check constraint violation, got nil")
	}
}

func TestServiceOverPostgres(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.New(db)

	svc, err := shop.New(ctx, store, store, nil)
	if err != nil {
		t.Fatalf("Open service: %v", err)
	}
	if _, err := svc.AddProduct(ctx, "P1", "Widget", decimal.RequireFromString("2.50"), 20); err != nil {
		t.Fatalf("Add product: %v", err)
	}

	concurrency := 15
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.SellProducts(ctx, fmt.Sprintf("S%d", i), []shop.SaleItem{{ProductID: "P1", Quantity: 2}}); err != nil {
				t.Errorf("Sell: %v", err)
			}
		}(i)
	}
	wg.Wait()

	reloaded, err := shop.New(ctx, store, store, nil)
	if err != nil {
		t.Fatalf("Reload service: %v", err)
	}

	p, err := reloaded.Product("P1")
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if p.Quantity != 0 {
		t.Errorf("Expected stock 0, got %d", p.Quantity)
	}

	sold := 0
	for _, r := range reloaded.SalesReport() {
		sold += r.QuantitySold
	}
	if sold != 20 {
		t.Errorf("Expected 20 units sold, got %d", sold)
	}
	if n := len(reloaded.Sales()); n != concurrency {
		t.Errorf("Expected %d sales, got %d", concurrency, n)
	}
}
