package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the invoice service. Handlers translate these to
// HTTP statuses; anything not matched here is treated as a storage error.
var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrInvalidDateRange = errors.New("due_date precedes issue_date")
	ErrNumberExhausted  = errors.New("invoice number generation exhausted")
)

// ProductNotFoundError identifies the offending product of a create/update.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %d not found", e.ProductID)
}
