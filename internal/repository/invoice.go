package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/models"
)

// ListFilters are conjunctive; nil fields are not applied. Date bounds are
// inclusive ISO YYYY-MM-DD strings.
type ListFilters struct {
	ClientID      *uint
	IssueDateFrom *string
	IssueDateTo   *string
	DueDateFrom   *string
	DueDateTo     *string
}

// InvoiceSummary is one row of the list view.
type InvoiceSummary struct {
	ID         uint            `json:"id"`
	InvoiceNo  string          `json:"invoice_no"`
	IssueDate  string          `json:"issue_date"`
	DueDate    string          `json:"due_date"`
	ClientName string          `json:"client_name"`
	ItemCount  int             `json:"item_count"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
}

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceNoPrefix = "INV-"

// NextSequence returns max(existing numeric suffixes)+1, recomputed from
// persisted state on every call. Numbers of deleted invoices are never
// reused, so the count of rows is deliberately not used here.
func (r *InvoiceRepository) NextSequence(ctx context.Context) (int, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.Invoice{}).Pluck("invoice_no", &numbers).Error; err != nil {
		return 0, err
	}
	maxSeq := 0
	for _, no := range numbers {
		n, err := strconv.Atoi(strings.TrimPrefix(no, invoiceNoPrefix))
		if err == nil && n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq + 1, nil
}

// Insert writes the invoice row and all item rows in one transaction. A
// gorm.ErrDuplicatedKey from the invoice_no unique index is returned to the
// caller, which owns the number retry.
func (r *InvoiceRepository) Insert(ctx context.Context, inv *models.Invoice, items []models.InvoiceItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		return tx.Create(&items).Error
	})
}

// Get loads an invoice with its client and items, items in insertion order.
func (r *InvoiceRepository) Get(ctx context.Context, id uint) (models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("invoice_items.id") }).
		First(&inv, id).Error
	return inv, err
}

// List returns one page of invoice summaries plus the total count of the
// filtered set.
func (r *InvoiceRepository) List(ctx context.Context, f ListFilters, limit, offset int) ([]InvoiceSummary, int64, error) {
	q := r.db.WithContext(ctx).
		Table("invoices").
		Joins("JOIN clients ON clients.id = invoices.client_id")
	if f.ClientID != nil {
		q = q.Where("invoices.client_id = ?", *f.ClientID)
	}
	if f.IssueDateFrom != nil {
		q = q.Where("invoices.issue_date >= ?", *f.IssueDateFrom)
	}
	if f.IssueDateTo != nil {
		q = q.Where("invoices.issue_date <= ?", *f.IssueDateTo)
	}
	if f.DueDateFrom != nil {
		q = q.Where("invoices.due_date >= ?", *f.DueDateFrom)
	}
	if f.DueDateTo != nil {
		q = q.Where("invoices.due_date <= ?", *f.DueDateTo)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]InvoiceSummary, 0, limit)
	err := q.Session(&gorm.Session{}).
		Select(`invoices.id, invoices.invoice_no, invoices.issue_date, invoices.due_date,
			clients.name AS client_name, invoices.tax, invoices.total,
			(SELECT COUNT(*) FROM invoice_items WHERE invoice_items.invoice_id = invoices.id) AS item_count`).
		Order("invoices.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update persists the supplied scalar fields and, when replaceItems is set,
// swaps the full item set, all in one transaction. Item replacement is a
// delete-then-insert, not a merge.
func (r *InvoiceRepository) Update(ctx context.Context, id uint, fields map[string]any, items []models.InvoiceItem, replaceItems bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaceItems {
			if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].ID = 0
				items[i].InvoiceID = id
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		if len(fields) > 0 {
			if err := tx.Model(&models.Invoice{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the invoice and all of its items in one transaction. The
// explicit item delete keeps behavior identical on SQLite, where foreign key
// cascades are off unless the pragma is enabled.
func (r *InvoiceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, id).Error
	})
}
