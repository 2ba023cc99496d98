package models

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID       string          `json:"product_id"`
	Name     string          `json:"product_name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// SaleLineItem references its product by id and keeps the name and unit
// price it was sold at, so the record survives later catalog changes.
// Subtotal is fixed when the line is created and is what gets persisted.
type SaleLineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity_sold"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func NewSaleLineItem(p Product, quantity int) SaleLineItem {
	return SaleLineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		Subtotal:    p.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func (i SaleLineItem) Total() decimal.Decimal {
	return i.Subtotal
}

type Sale struct {
	ID    string         `json:"sale_id"`
	Items []SaleLineItem `json:"items"`
}

func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Total())
	}
	return total
}

// Records flattens the sale into one row per line item.
func (s Sale) Records() []SaleRecord {
	records := make([]SaleRecord, 0, len(s.Items))
	for _, item := range s.Items {
		records = append(records, SaleRecord{
			SaleID:       s.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			QuantitySold: item.Quantity,
			TotalPrice:   item.Total(),
		})
	}
	return records
}

// SaleRecord is one row of the sales report and of the persisted ledger.
type SaleRecord struct {
	SaleID       string          `json:"sale_id"`
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}
