package app

import (
	"context"
	"fmt"

	"github.com/safar/shopkeeper/internal/config"
	"github.com/safar/shopkeeper/internal/database"
	"github.com/safar/shopkeeper/internal/shop"
	"github.com/safar/shopkeeper/internal/store/csvstore"
	"github.com/safar/shopkeeper/internal/store/pgstore"
	"go.uber.org/zap"
)

// Open builds the shop service on the configured backend. The returned
// close function releases backend resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*shop.Service, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendCSV:
		store := csvstore.New(cfg.Store.InventoryFile, cfg.Store.SalesFile)
		logger.Info("using csv store",
			zap.String("inventory_file", cfg.Store.InventoryFile),
			zap.String("sales_file", cfg.Store.SalesFile),
		)

		svc, err := shop.New(ctx, store, store, logger)
		if err != nil {
			return nil, nil, err
		}
		return svc, func() error { return nil }, nil

	case config.BackendPostgres:
		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		if cfg.Database.AutoMigrate {
			if err := pgstore.Migrate(db.DB); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		logger.Info("using postgres store")

		store := pgstore.New(db)
		svc, err := shop.New(ctx, store, store, logger)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return svc, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
