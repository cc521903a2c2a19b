package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/models"
	"github.com/diewo77/invoicing-api/internal/repository"
)

func newTestService(t *testing.T) (*InvoiceService, *gorm.DB) {
	t.Helper()
	conn := setupServiceTestDB(t)
	svc := NewInvoiceService(repository.NewInvoiceRepository(conn), repository.NewReferenceStore(conn), zerolog.Nop())
	return svc, conn
}

func sampleCreate() CreateInput {
	return CreateInput{
		ClientID:  1,
		IssueDate: "2026-02-08",
		DueDate:   "2026-03-08",
		Tax:       dec("350.00"),
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)
	require.Equal(t, "INV-0001", view.InvoiceNo)
	require.Equal(t, "Acme Corporation", view.Client.Name)
	require.Equal(t, "123 Business Ave, Suite 100, New York, NY 10001", view.Address)
	require.True(t, view.Subtotal.Equal(dec("3500.00")))
	require.True(t, view.Total.Equal(dec("3850.00")))
	require.Len(t, view.Items, 2)
	require.Equal(t, 2, view.Items[0].Quantity)
	require.True(t, view.Items[0].LineTotal.Equal(dec("3000.00")))
}

func TestCreateInvoiceExplicitAddress(t *testing.T) {
	svc, _ := newTestService(t)
	in := sampleCreate()
	in.Address = "Custom Billing Address"

	view, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "Custom Billing Address", view.Address)
}

func TestCreateInvoiceUnknownClient(t *testing.T) {
	svc, _ := newTestService(t)
	in := sampleCreate()
	in.ClientID = 999

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrClientNotFound)

	// Nothing persisted.
	list, lerr := svc.List(context.Background(), repository.ListFilters{}, 20, 0)
	require.NoError(t, lerr)
	require.Zero(t, list.TotalCount)
}

func TestCreateInvoiceUnknownProductPersistsNothing(t *testing.T) {
	svc, _ := newTestService(t)
	in := sampleCreate()
	in.Items = []ItemInput{{ProductID: 1, Quantity: 1}, {ProductID: 999, Quantity: 1}}

	_, err := svc.Create(context.Background(), in)
	var pnf *ProductNotFoundError
	require.ErrorAs(t, err, &pnf)
	require.Equal(t, uint(999), pnf.ProductID)

	list, lerr := svc.List(context.Background(), repository.ListFilters{}, 20, 0)
	require.NoError(t, lerr)
	require.Zero(t, list.TotalCount)
}

func TestInvoiceNumbersNeverReused(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)
	second, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)
	require.Equal(t, "INV-0001", first.InvoiceNo)
	require.Equal(t, "INV-0002", second.InvoiceNo)

	require.NoError(t, svc.Delete(ctx, second.ID))

	third, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)
	require.Equal(t, "INV-0003", third.InvoiceNo)
}

func TestUpdateTaxOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	tax := dec("500.00")
	view, err := svc.Update(ctx, created.ID, UpdateInput{Tax: &tax})
	require.NoError(t, err)
	require.True(t, view.Tax.Equal(dec("500.00")))
	require.True(t, view.Subtotal.Equal(dec("3500.00")), "subtotal must be untouched")
	require.True(t, view.Total.Equal(dec("4000.00")))
	require.Len(t, view.Items, 2)
	require.Equal(t, created.InvoiceNo, view.InvoiceNo)
}

func TestUpdateItemsReplacesSet(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	view, err := svc.Update(ctx, created.ID, UpdateInput{
		Items: []ItemInput{{ProductID: 3, Quantity: 1}}, // Mobile App Development @ 3000.00
	})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, uint(3), view.Items[0].ProductID)
	require.True(t, view.Subtotal.Equal(dec("3000.00")))
	require.True(t, view.Total.Equal(dec("3350.00")), "total %s", view.Total)

	// Old rows are gone, not orphaned.
	var count int64
	require.NoError(t, conn.Table("invoice_items").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUpdateClientRecomputesAddress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	newClient := uint(2)
	view, err := svc.Update(ctx, created.ID, UpdateInput{ClientID: &newClient})
	require.NoError(t, err)
	require.Equal(t, "TechStart Inc.", view.Client.Name)
	require.Contains(t, view.Address, "Innovation Blvd")
}

func TestUpdateClientWithExplicitAddressKeepsIt(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	newClient := uint(2)
	addr := "Override Street 1"
	view, err := svc.Update(ctx, created.ID, UpdateInput{ClientID: &newClient, Address: &addr})
	require.NoError(t, err)
	require.Equal(t, uint(2), view.Client.ID)
	require.Equal(t, "Override Street 1", view.Address)
}

func TestUpdateInvalidDateRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	// Moving issue_date past the stored due_date must be rejected against the
	// effective pair.
	issue := "2026-04-01"
	_, err = svc.Update(ctx, created.ID, UpdateInput{IssueDate: &issue})
	require.ErrorIs(t, err, ErrInvalidDateRange)

	// Equal effective dates are fine.
	issue = "2026-03-08"
	view, err := svc.Update(ctx, created.ID, UpdateInput{IssueDate: &issue})
	require.NoError(t, err)
	require.Equal(t, view.IssueDate, view.DueDate)
}

func TestUpdateUnknownClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	bad := uint(999)
	_, err = svc.Update(ctx, created.ID, UpdateInput{ClientID: &bad})
	require.ErrorIs(t, err, ErrClientNotFound)
}

func TestUpdateMissingInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	tax := decimal.Zero
	_, err := svc.Update(context.Background(), 999, UpdateInput{Tax: &tax})
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestDeleteCascadesItems(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, sampleCreate())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrInvoiceNotFound)

	var count int64
	require.NoError(t, conn.Table("invoice_items").Where("invoice_id = ?", created.ID).Count(&count).Error)
	require.Zero(t, count)

	list, err := svc.List(ctx, repository.ListFilters{}, 20, 0)
	require.NoError(t, err)
	require.Zero(t, list.TotalCount)
	require.Empty(t, list.Invoices)
}

func TestDeleteMissingInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	require.ErrorIs(t, svc.Delete(context.Background(), 12345), ErrInvoiceNotFound)
}

// forceNumberCollisions makes the next n invoice inserts collide: a create
// callback claims the candidate number first, inside the same transaction,
// so the rival row rolls back together with the failed attempt.
func forceNumberCollisions(t *testing.T, conn *gorm.DB, n int) {
	t.Helper()
	remaining := n
	claiming := false
	err := conn.Callback().Create().Before("gorm:create").Register("claim_invoice_number", func(tx *gorm.DB) {
		if claiming || remaining <= 0 {
			return
		}
		inv, ok := tx.Statement.Dest.(*models.Invoice)
		if !ok {
			return
		}
		remaining--
		claiming = true
		defer func() { claiming = false }()
		rival := models.Invoice{
			InvoiceNo: inv.InvoiceNo,
			IssueDate: inv.IssueDate,
			DueDate:   inv.DueDate,
			ClientID:  inv.ClientID,
			Address:   "rival",
			Tax:       decimal.Zero,
			Subtotal:  decimal.Zero,
			Total:     decimal.Zero,
		}
		if cerr := tx.Session(&gorm.Session{NewDB: true}).Create(&rival).Error; cerr != nil {
			_ = tx.AddError(cerr)
		}
	})
	require.NoError(t, err)
}

func TestCreateRetriesAfterNumberCollision(t *testing.T) {
	svc, conn := newTestService(t)
	forceNumberCollisions(t, conn, 1)

	view, err := svc.Create(context.Background(), sampleCreate())
	require.NoError(t, err)
	require.Equal(t, "INV-0002", view.InvoiceNo)

	// The rolled-back attempt leaves no rows behind.
	var count int64
	require.NoError(t, conn.Table("invoices").Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, conn.Table("invoice_items").Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestCreateFailsWhenNumbersExhausted(t *testing.T) {
	svc, conn := newTestService(t)
	forceNumberCollisions(t, conn, maxNumberAttempts)

	_, err := svc.Create(context.Background(), sampleCreate())
	require.ErrorIs(t, err, ErrNumberExhausted)

	// Every attempt rolled back, nothing persisted.
	var count int64
	require.NoError(t, conn.Table("invoices").Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, conn.Table("invoice_items").Count(&count).Error)
	require.Zero(t, count)
}
