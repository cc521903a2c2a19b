package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoicing models. Dates travel and persist as ISO YYYY-MM-DD strings so
// range filters can rely on lexicographic comparison.
type Invoice struct {
	ID        uint            `gorm:"primaryKey"`
	InvoiceNo string          `gorm:"size:20;not null;uniqueIndex"`
	IssueDate string          `gorm:"size:10;not null;index"`
	DueDate   string          `gorm:"size:10;not null;index"`
	ClientID  uint            `gorm:"not null;index"`
	Client    Client          `gorm:"foreignKey:ClientID"`
	Address   string          `gorm:"size:500;not null"`
	Tax       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Items     []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// InvoiceItem is one line of an invoice. ProductName and UnitPrice are
// captured by value when the line is written; later product changes never
// touch existing invoices.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey"`
	InvoiceID   uint            `gorm:"not null;index"`
	ProductID   uint            `gorm:"not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
