package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/shopkeeper/internal/shop"
	"github.com/shopspring/decimal"
)

const doneKeyword = "done"

// Menu is the interactive text front end. It parses and validates every
// answer before handing it to the service.
type Menu struct {
	svc *shop.Service
	in  *bufio.Scanner
	out io.Writer
}

func NewMenu(svc *shop.Service, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run shows the menu until the user exits or input ends. Persistence
// failures stop the loop and are returned.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out, "\n--- Small Shop Management System ---")
		fmt.Fprintln(m.out, "1. View Inventory")
		fmt.Fprintln(m.out, "2. Add Product to Inventory")
		fmt.Fprintln(m.out, "3. Process a Sale")
		fmt.Fprintln(m.out, "4. View Sales Report")
		fmt.Fprintln(m.out, "5. Exit")

		choice, ok := m.prompt("Enter your choice: ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case "1":
			m.showInventory()
		case "2":
			err = m.addProduct(ctx)
		case "3":
			err = m.processSale(ctx)
		case "4":
			m.showSalesReport()
		case "5":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid choice! Try again.")
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) showInventory() {
	products := m.svc.InventoryView()
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, p.Name, p.Price.String(), strconv.Itoa(p.Quantity)})
	}
	writeGrid(m.out, []string{"product_id", "product_name", "price", "quantity"}, rows, map[int]bool{2: true, 3: true})
}

func (m *Menu) showSalesReport() {
	records := m.svc.SalesReport()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.SaleID,
			r.ProductID,
			r.ProductName,
			strconv.Itoa(r.QuantitySold),
			r.TotalPrice.StringFixed(2),
		})
	}
	writeGrid(m.out,
		[]string{"sale_id", "product_id", "product_name", "quantity_sold", "total_price"},
		rows, map[int]bool{3: true, 4: true})
}

func (m *Menu) addProduct(ctx context.Context) error {
	id, err := m.promptNonEmpty("Enter Product ID: ")
	if err != nil {
		return err
	}
	name, err := m.promptNonEmpty("Enter Product Name: ")
	if err != nil {
		return err
	}
	price, err := m.promptPrice("Enter Price: ")
	if err != nil {
		return err
	}
	quantity, err := m.promptInt("Enter Quantity: ", 0)
	if err != nil {
		return err
	}

	if _, err := m.svc.AddProduct(ctx, id, name, price, quantity); err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Product added successfully!")
	return nil
}

func (m *Menu) processSale(ctx context.Context) error {
	saleID, ok := m.prompt("Enter Sale ID (blank to generate): ")
	if !ok {
		return io.EOF
	}
	if saleID == "" {
		saleID = uuid.NewString()
		fmt.Fprintf(m.out, "Using Sale ID %s\n", saleID)
	}
	if m.svc.HasSale(saleID) {
		fmt.Fprintf(m.out, "Sale %s already exists!\n", saleID)
		return nil
	}

	var items []shop.SaleItem
	for {
		productID, ok := m.prompt("Enter Product ID to sell (or 'done' to finish): ")
		if !ok {
			return io.EOF
		}
		if strings.EqualFold(productID, doneKeyword) {
			break
		}

		product, err := m.svc.Product(productID)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid Product ID!")
			continue
		}

		quantity, err := m.promptInt(fmt.Sprintf("Enter quantity for %s: ", product.Name), 1)
		if err != nil {
			return err
		}
		items = append(items, shop.SaleItem{ProductID: productID, Quantity: quantity})
	}

	result, err := m.svc.SellProducts(ctx, saleID, items)
	if err != nil {
		return err
	}

	for _, skipped := range result.Skipped {
		switch {
		case errors.Is(skipped.Reason, shop.ErrInsufficientStock):
			fmt.Fprintf(m.out, "Not enough stock for %s!\n", skipped.Item.ProductID)
		default:
			fmt.Fprintf(m.out, "Skipped %s: %v\n", skipped.Item.ProductID, skipped.Reason)
		}
	}
	fmt.Fprintf(m.out, "Sale %s recorded successfully! Total: %s\n", saleID, result.Sale.Total().StringFixed(2))
	return nil
}

func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) promptNonEmpty(label string) (string, error) {
	for {
		v, ok := m.prompt(label)
		if !ok {
			return "", io.EOF
		}
		if v != "" {
			return v, nil
		}
		fmt.Fprintln(m.out, "A value is required.")
	}
}

func (m *Menu) promptPrice(label string) (decimal.Decimal, error) {
	for {
		v, ok := m.prompt(label)
		if !ok {
			return decimal.Decimal{}, io.EOF
		}
		price, err := decimal.NewFromString(v)
		if err == nil && !price.IsNegative() {
			return price, nil
		}
		fmt.Fprintln(m.out, "Please enter a non-negative number.")
	}
}

func (m *Menu) promptInt(label string, minValue int) (int, error) {
	for {
		v, ok := m.prompt(label)
		if !ok {
			return 0, io.EOF
		}
		n, err := strconv.Atoi(v)
		if err == nil && n >= minValue {
			return n, nil
		}
		fmt.Fprintf(m.out, "Please enter a whole number of at least %d.\n", minValue)
	}
}
