package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/models"
	"github.com/diewo77/invoicing-api/internal/repository"
)

// ItemInput is one requested invoice line. Quantity >= 1 is a precondition
// enforced by request validation.
type ItemInput struct {
	ProductID uint
	Quantity  int
}

// Calculator prices requested lines against the product catalog using
// decimal arithmetic throughout.
type Calculator struct {
	ref *repository.ReferenceStore
}

func NewCalculator(ref *repository.ReferenceStore) *Calculator {
	return &Calculator{ref: ref}
}

// Calculate resolves each line in input order, copying product name and price
// by value, and returns the priced items with subtotal and total (subtotal +
// flat tax). The first unknown product aborts the whole computation.
func (c *Calculator) Calculate(ctx context.Context, items []ItemInput, tax decimal.Decimal) ([]models.InvoiceItem, decimal.Decimal, decimal.Decimal, error) {
	lines := make([]models.InvoiceItem, 0, len(items))
	subtotal := decimal.Zero
	for _, in := range items {
		product, err := c.ref.GetProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, decimal.Zero, &ProductNotFoundError{ProductID: in.ProductID}
			}
			return nil, decimal.Zero, decimal.Zero, err
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, models.InvoiceItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
		})
	}
	return lines, subtotal, subtotal.Add(tax), nil
}
