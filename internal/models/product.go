package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Monetary fields serialize as JSON numbers, matching the wire format
	// clients of this API already consume.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a sellable service. Products are seed data and read-only
// through the API; invoice lines copy name and price at creation time.
type Product struct {
	ID    uint            `gorm:"primaryKey"`
	Name  string          `gorm:"not null"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
