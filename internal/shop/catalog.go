package shop

import (
	"context"
	"fmt"

	"github.com/safar/shopkeeper/internal/models"
	"go.uber.org/zap"
)

// Catalog holds the products on hand. Display order is insertion order;
// overwriting a product keeps its original position.
type Catalog struct {
	store    ProductStore
	logger   *zap.Logger
	products map[string]*models.Product
	order    []string
}

func NewCatalog(store ProductStore, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		store:    store,
		logger:   logger,
		products: make(map[string]*models.Product),
	}
}

func (c *Catalog) Load(ctx context.Context) error {
	products, err := c.store.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	c.products = make(map[string]*models.Product, len(products))
	c.order = c.order[:0]
	for _, p := range products {
		c.put(p)
	}

	c.logger.Debug("catalog loaded", zap.Int("products", len(c.order)))
	return nil
}

func (c *Catalog) Save(ctx context.Context) error {
	if err := c.store.SaveProducts(ctx, c.List()); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	return nil
}

// Add inserts the product or replaces the one with the same id, then
// persists the catalog. If the save fails the previous entry is restored.
func (c *Catalog) Add(ctx context.Context, product models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	previous, existed := c.products[product.ID]
	c.put(product)

	if err := c.Save(ctx); err != nil {
		if existed {
			c.products[product.ID] = previous
		} else {
			delete(c.products, product.ID)
			c.order = c.order[:len(c.order)-1]
		}
		return err
	}

	c.logger.Debug("product stored",
		zap.String("product_id", product.ID),
		zap.Int("quantity", product.Quantity),
	)
	return nil
}

func (c *Catalog) List() []models.Product {
	products := make([]models.Product, 0, len(c.order))
	for _, id := range c.order {
		products = append(products, *c.products[id])
	}
	return products
}

func (c *Catalog) Lookup(productID string) (models.Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return *p, nil
}

// Deduct removes amount units from the product's stock. On any error the
// stock is left untouched. Deduct does not persist; callers save the
// catalog once their batch of deductions is done.
func (c *Catalog) Deduct(productID string, amount int) error {
	if amount <= 0 {
		return ErrInvalidQuantity
	}

	p, ok := c.products[productID]
	if !ok {
		return ErrProductNotFound
	}

	if p.Quantity < amount {
		return ErrInsufficientStock
	}

	p.Quantity -= amount
	return nil
}

// restock returns units taken by Deduct.
func (c *Catalog) restock(productID string, amount int) {
	if p, ok := c.products[productID]; ok {
		p.Quantity += amount
	}
}

func (c *Catalog) Len() int {
	return len(c.order)
}

func (c *Catalog) put(product models.Product) {
	if _, exists := c.products[product.ID]; !exists {
		c.order = append(c.order, product.ID)
	}
	p := product
	c.products[product.ID] = &p
}

func validateProduct(p models.Product) error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidProduct)
	}
	return nil
}
