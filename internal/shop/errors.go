package shop

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidSale       = errors.New("invalid sale")
	ErrDuplicateSale     = errors.New("sale already recorded")
	ErrMalformedRow      = errors.New("malformed row")
)

// RowError locates a stored row that could not be parsed. It unwraps to
// ErrMalformedRow.
type RowError struct {
	File   string
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v: %v", e.File, e.Line, ErrMalformedRow, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v: column %s: %v", e.File, e.Line, ErrMalformedRow, e.Column, e.Err)
}

func (e *RowError) Unwrap() []error {
	return []error{ErrMalformedRow, e.Err}
}
