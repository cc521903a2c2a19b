package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/models"
	"github.com/diewo77/invoicing-api/internal/repository"
)

const maxNumberAttempts = 5

func formatInvoiceNo(seq int) string { return fmt.Sprintf("INV-%04d", seq) }

// InvoiceService implements the invoice use cases on top of the repository,
// the reference store, and the calculator.
type InvoiceService struct {
	repo *repository.InvoiceRepository
	ref  *repository.ReferenceStore
	calc *Calculator
	log  zerolog.Logger
}

func NewInvoiceService(repo *repository.InvoiceRepository, ref *repository.ReferenceStore, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{
		repo: repo,
		ref:  ref,
		calc: NewCalculator(ref),
		log:  log.With().Str("component", "invoice_service").Logger(),
	}
}

type CreateInput struct {
	ClientID  uint
	Address   string // empty means "use the client's address"
	IssueDate string
	DueDate   string
	Tax       decimal.Decimal
	Items     []ItemInput
}

// UpdateInput carries a partial update; nil fields keep their stored values.
// A non-nil empty Items slice is rejected upstream by request validation.
type UpdateInput struct {
	ClientID  *uint
	Address   *string
	IssueDate *string
	DueDate   *string
	Tax       *decimal.Decimal
	Items     []ItemInput // nil = keep existing items
}

type ClientView struct {
	ID                    uint   `json:"id"`
	Name                  string `json:"name"`
	Address               string `json:"address"`
	CompanyRegistrationNo string `json:"company_registration_no"`
}

type ItemView struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type InvoiceView struct {
	ID        uint            `json:"id"`
	InvoiceNo string          `json:"invoice_no"`
	IssueDate string          `json:"issue_date"`
	DueDate   string          `json:"due_date"`
	Client    ClientView      `json:"client"`
	Address   string          `json:"address"`
	Items     []ItemView      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

type InvoiceListView struct {
	Invoices   []repository.InvoiceSummary `json:"invoices"`
	TotalCount int64                       `json:"total_count"`
	Limit      int                         `json:"limit"`
	Offset     int                         `json:"offset"`
}

// Create validates the client, prices the items, claims the next invoice
// number and persists everything atomically. A number collision under
// concurrent creation is retried with the next candidate up to the attempt
// budget; exhaustion fails the request rather than emitting a non-sequential
// number.
func (s *InvoiceService) Create(ctx context.Context, in CreateInput) (*InvoiceView, error) {
	client, err := s.ref.GetClient(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	address := in.Address
	if address == "" {
		address = client.Address
	}

	items, subtotal, total, err := s.calc.Calculate(ctx, in.Items, in.Tax)
	if err != nil {
		return nil, err
	}

	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}
	var inv models.Invoice
	for attempt := 0; ; attempt++ {
		inv = models.Invoice{
			InvoiceNo: formatInvoiceNo(seq + attempt),
			IssueDate: in.IssueDate,
			DueDate:   in.DueDate,
			ClientID:  client.ID,
			Address:   address,
			Tax:       in.Tax,
			Subtotal:  subtotal,
			Total:     total,
		}
		err = s.repo.Insert(ctx, &inv, items)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if attempt == maxNumberAttempts-1 {
			s.log.Error().Int("attempts", maxNumberAttempts).Msg("invoice number retries exhausted")
			return nil, ErrNumberExhausted
		}
	}
	inv.Items = items
	inv.Client = client
	return invoiceView(inv), nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*InvoiceView, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoiceView(inv), nil
}

func (s *InvoiceService) List(ctx context.Context, f repository.ListFilters, limit, offset int) (*InvoiceListView, error) {
	rows, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	return &InvoiceListView{Invoices: rows, TotalCount: total, Limit: limit, Offset: offset}, nil
}

// Update applies a partial update. Effective values (supplied, else stored)
// drive the date-range check; a supplied client_id revalidates the client and,
// unless an address was supplied too, re-derives the billing address from
// that client. Supplied items fully replace the stored set and are re-priced;
// otherwise the stored subtotal stands and only the total follows the
// effective tax. The invoice number is immutable.
func (s *InvoiceService) Update(ctx context.Context, id uint, in UpdateInput) (*InvoiceView, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	issueDate := inv.IssueDate
	if in.IssueDate != nil {
		issueDate = *in.IssueDate
	}
	dueDate := inv.DueDate
	if in.DueDate != nil {
		dueDate = *in.DueDate
	}
	if (in.IssueDate != nil || in.DueDate != nil) && dueDate < issueDate {
		return nil, ErrInvalidDateRange
	}

	clientID := inv.ClientID
	address := inv.Address
	if in.ClientID != nil {
		client := inv.Client
		if *in.ClientID != inv.ClientID {
			client, err = s.ref.GetClient(ctx, *in.ClientID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrClientNotFound
				}
				return nil, err
			}
		}
		clientID = client.ID
		if in.Address == nil {
			address = client.Address
		}
	}
	if in.Address != nil {
		address = *in.Address
	}

	tax := inv.Tax
	if in.Tax != nil {
		tax = *in.Tax
	}

	subtotal := inv.Subtotal
	var items []models.InvoiceItem
	replaceItems := in.Items != nil
	if replaceItems {
		items, subtotal, _, err = s.calc.Calculate(ctx, in.Items, tax)
		if err != nil {
			return nil, err
		}
	}
	total := subtotal.Add(tax)

	fields := map[string]any{
		"issue_date": issueDate,
		"due_date":   dueDate,
		"client_id":  clientID,
		"address":    address,
		"tax":        tax,
		"subtotal":   subtotal,
		"total":      total,
	}
	if err := s.repo.Update(ctx, inv.ID, fields, items, replaceItems); err != nil {
		return nil, err
	}
	return s.Get(ctx, inv.ID)
}

func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func invoiceView(inv models.Invoice) *InvoiceView {
	items := make([]ItemView, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, ItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		})
	}
	return &InvoiceView{
		ID:        inv.ID,
		InvoiceNo: inv.InvoiceNo,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Client: ClientView{
			ID:                    inv.Client.ID,
			Name:                  inv.Client.Name,
			Address:               inv.Client.Address,
			CompanyRegistrationNo: inv.Client.CompanyRegistrationNo,
		},
		Address:  inv.Address,
		Items:    items,
		Subtotal: inv.Subtotal,
		Tax:      inv.Tax,
		Total:    inv.Total,
	}
}
