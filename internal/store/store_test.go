package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/cashpro/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type recordingPersister struct {
	saves int
	last  models.Snapshot
	fail  error
}

func (p *recordingPersister) SaveSnapshot(_ context.Context, snap models.Snapshot) error {
	if p.fail != nil {
		return p.fail
	}
	p.saves++
	p.last = snap
	return nil
}

type recordingObserver struct{ calls []string }

func (o *recordingObserver) ObserveMutation(entity, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.calls = append(o.calls, entity+"."+op+"."+result)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newTestStore(t *testing.T, initial models.Snapshot, opts ...Option) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	base := []Option{
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return testToday.Add(9 * time.Hour) }),
		WithPersister(p),
	}
	return New(initial, append(base, opts...)...), p
}

func invoiceOf(total string) InvoiceInput {
	return InvoiceInput{Items: []ItemInput{{ProductName: "Item", Quantity: 1, UnitPrice: dec(total), CostPrice: dec("0"), TaxRate: dec("0")}}}
}

func TestAddInvoice_AssignsNumberDateAndTotals(t *testing.T) {
	s, p := newTestStore(t, models.Snapshot{})
	ctx := context.Background()

	inv, err := s.AddInvoice(ctx, InvoiceInput{
		ClientID:   "c1",
		ClientName: "María González",
		Items: []ItemInput{
			{ProductID: "p1", ProductName: "Camiseta Básica", Quantity: 3, UnitPrice: dec("15"), CostPrice: dec("5"), TaxRate: dec("0.16")},
			{ProductID: "p4", ProductName: "Gorra Snapback", Quantity: 2, UnitPrice: dec("12"), CostPrice: dec("3"), TaxRate: dec("0.16")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-001", inv.Number)
	assert.True(t, inv.CreatedAt.Equal(testToday))
	assert.True(t, inv.DueDate.Equal(testToday.AddDate(0, 0, DefaultDueDays)))
	assert.Equal(t, models.InvoiceStatusPending, inv.Status)
	assert.True(t, dec("69").Equal(inv.Subtotal))
	assert.True(t, dec("11.04").Equal(inv.TaxTotal))
	assert.True(t, dec("80.04").Equal(inv.Total))
	assert.True(t, dec("21").Equal(inv.CostTotal))
	require.Len(t, inv.Items, 2)
	assert.NotEmpty(t, inv.Items[0].ID)
	assert.NotEqual(t, inv.Items[0].ID, inv.Items[1].ID)
	assert.Equal(t, 1, p.saves)
	assert.Len(t, p.last.Invoices, 1)

	second, err := s.AddInvoice(ctx, invoiceOf("10"))
	require.NoError(t, err)
	assert.Equal(t, "INV-002", second.Number)
}

func TestAddInvoice_NumberSkipsPastHighestIssued(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{Invoices: []models.Invoice{
		{ID: "a", Number: "INV-001"},
		{ID: "c", Number: "INV-007"},
	}})
	inv, err := s.AddInvoice(context.Background(), invoiceOf("10"))
	require.NoError(t, err)
	assert.Equal(t, "INV-008", inv.Number)
}

func TestPaymentLifecycle(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{})
	ctx := context.Background()

	inv, err := s.AddInvoice(ctx, invoiceOf("100"))
	require.NoError(t, err)

	_, err = s.AddPayment(ctx, PaymentInput{InvoiceID: inv.ID, Amount: dec("40")})
	require.NoError(t, err)
	got, err := s.Invoice(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPartial, got.Status)

	_, err = s.AddPayment(ctx, PaymentInput{InvoiceID: inv.ID, Amount: dec("60"), Method: models.PaymentMethodCard})
	require.NoError(t, err)
	got, _ = s.Invoice(inv.ID)
	assert.Equal(t, models.InvoiceStatusPaid, got.Status)

	payments := s.Payments()
	require.Len(t, payments, 2)
	assert.Equal(t, models.PaymentMethodCash, payments[0].Method)
	assert.True(t, payments[0].Date.Equal(testToday))
}

func TestPayment_ExactDecimalTotalSettles(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{Invoices: []models.Invoice{
		{ID: "inv1", Number: "INV-001", Total: dec("80.04"), Status: models.InvoiceStatusPending},
	}})
	_, err := s.AddPayment(context.Background(), PaymentInput{InvoiceID: "inv1", Amount: dec("80.04")})
	require.NoError(t, err)
	got, _ := s.Invoice("inv1")
	assert.Equal(t, models.InvoiceStatusPaid, got.Status)
}

func TestPayment_PaidStaysPaid(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{Invoices: []models.Invoice{
		{ID: "inv1", Total: dec("10"), Status: models.InvoiceStatusPaid},
	}})
	_, err := s.AddPayment(context.Background(), PaymentInput{InvoiceID: "inv1", Amount: dec("5")})
	require.NoError(t, err)
	got, _ := s.Invoice("inv1")
	assert.Equal(t, models.InvoiceStatusPaid, got.Status)
}

func TestPayment_UnknownInvoiceStillRecorded(t *testing.T) {
	s, p := newTestStore(t, models.Snapshot{})
	pay, err := s.AddPayment(context.Background(), PaymentInput{InvoiceID: "missing", Amount: dec("25")})
	require.NoError(t, err)
	assert.Equal(t, "missing", pay.InvoiceID)
	assert.Len(t, s.Payments(), 1)
	assert.Len(t, p.last.Payments, 1)
}

func TestDeleteClient_KeepsInvoiceClientName(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{})
	ctx := context.Background()

	c, err := s.AddClient(ctx, ClientInput{Name: "Ana Martínez", Email: "ana@email.com"})
	require.NoError(t, err)
	in := invoiceOf("50")
	in.ClientID, in.ClientName = c.ID, c.Name
	inv, err := s.AddInvoice(ctx, in)
	require.NoError(t, err)

	require.NoError(t, s.DeleteClient(ctx, c.ID))
	assert.Empty(t, s.Clients())

	got, err := s.Invoice(inv.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ClientID)
	assert.Equal(t, "Ana Martínez", got.ClientName)
}

func TestDeleteProduct_KeepsInvoiceItems(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{})
	ctx := context.Background()

	prod, err := s.AddProduct(ctx, ProductInput{Name: "Gorra", SalePrice: dec("12"), PurchasePrice: dec("3"), TaxRate: dec("0.16"), Stock: 5})
	require.NoError(t, err)
	assert.True(t, prod.Active)

	inv, err := s.AddInvoice(ctx, InvoiceInput{Items: []ItemInput{ItemFromProduct(prod, 2)}})
	require.NoError(t, err)
	require.NoError(t, s.DeleteProduct(ctx, prod.ID))

	got, _ := s.Invoice(inv.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Gorra", got.Items[0].ProductName)
	assert.True(t, dec("12").Equal(got.Items[0].UnitPrice))
}

func TestUpdateAndDelete_NotFoundLeavesCollectionsUnchanged(t *testing.T) {
	initial := models.Snapshot{
		Products: []models.Product{{ID: "p1", Name: "Camiseta"}},
		Clients:  []models.Client{{ID: "c1", Name: "María"}},
		Invoices: []models.Invoice{{ID: "inv1", Status: models.InvoiceStatusPending}},
	}
	obs := &recordingObserver{}
	s, p := newTestStore(t, initial, WithObserver(obs))
	ctx := context.Background()
	name := "Otro"

	errs := []error{
		s.UpdateProduct(ctx, "nope", ProductPatch{Name: &name}),
		s.DeleteProduct(ctx, "nope"),
		s.UpdateClient(ctx, "nope", ClientPatch{Name: &name}),
		s.DeleteClient(ctx, "nope"),
		s.UpdateInvoiceStatus(ctx, "nope", models.InvoiceStatusPaid),
	}
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, initial, s.Snapshot())
	assert.Zero(t, p.saves)
	assert.Equal(t, "product.update.error", obs.calls[0])
}

func TestUpdateProduct_MergesPatch(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{Products: []models.Product{
		{ID: "p1", Code: "CAM-001", Name: "Camiseta", SalePrice: dec("15"), PurchasePrice: dec("5"), Stock: 120, Active: true},
	}})
	stock, active := 80, false
	require.NoError(t, s.UpdateProduct(context.Background(), "p1", ProductPatch{Stock: &stock, Active: &active}))

	got, err := s.Product("p1")
	require.NoError(t, err)
	assert.Equal(t, 80, got.Stock)
	assert.False(t, got.Active)
	assert.Equal(t, "CAM-001", got.Code)
	assert.True(t, dec("15").Equal(got.SalePrice))
}

func TestUpdateClient_MergesPatch(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{Clients: []models.Client{{ID: "c1", Name: "Carlos", Phone: "555-0102"}}})
	email := "carlos@email.com"
	require.NoError(t, s.UpdateClient(context.Background(), "c1", ClientPatch{Email: &email}))
	got, _ := s.Client("c1")
	assert.Equal(t, "carlos@email.com", got.Email)
	assert.Equal(t, "555-0102", got.Phone)
}

func TestUpdateInvoiceStatus(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{Invoices: []models.Invoice{{ID: "inv1", Status: models.InvoiceStatusPending}}})
	ctx := context.Background()
	require.NoError(t, s.UpdateInvoiceStatus(ctx, "inv1", models.InvoiceStatusOverdue))
	got, _ := s.Invoice("inv1")
	assert.Equal(t, models.InvoiceStatusOverdue, got.Status)

	var verr *ValidationError
	require.ErrorAs(t, s.UpdateInvoiceStatus(ctx, "inv1", "cancelled"), &verr)
	assert.Equal(t, "invalid_choice", verr.Violations["status"])
}

// Inputs are validated before they reach the collections. Earlier data files
// may hold values these checks reject; loading them is not validated.
func TestValidationRejectsInvalidInputs(t *testing.T) {
	s, p := newTestStore(t, models.Snapshot{Products: []models.Product{{ID: "p1", Name: "Camiseta"}}})
	ctx := context.Background()
	empty, blank := "", "   "

	cases := []struct {
		name  string
		err   error
		field string
		code  string
	}{
		{"product name", second(s.AddProduct(ctx, ProductInput{SalePrice: dec("1")})), "name", "required"},
		{"product price", second(s.AddProduct(ctx, ProductInput{Name: "x", SalePrice: dec("-1")})), "sale_price", "must_not_be_negative"},
		{"product stock", second(s.AddProduct(ctx, ProductInput{Name: "x", Stock: -1})), "stock", "must_not_be_negative"},
		{"patch clears name", s.UpdateProduct(ctx, "p1", ProductPatch{Name: &empty}), "name", "required"},
		{"blank product name", second(s.AddProduct(ctx, ProductInput{Name: "   "})), "name", "required"},
		{"patch blanks name", s.UpdateProduct(ctx, "p1", ProductPatch{Name: &blank}), "name", "required"},
		{"blank client name", second(s.AddClient(ctx, ClientInput{Name: "\t "})), "name", "required"},
		{"blank item name", second(s.AddInvoice(ctx, InvoiceInput{Items: []ItemInput{{ProductName: " ", Quantity: 1}}})), "items[0].product_name", "required"},
		{"blank expense description", second(s.AddExpense(ctx, ExpenseInput{Description: "  ", Amount: dec("5")})), "description", "required"},
		{"client email", second(s.AddClient(ctx, ClientInput{Name: "x", Email: "nope"})), "email", "invalid_email"},
		{"invoice without items", second(s.AddInvoice(ctx, InvoiceInput{Items: []ItemInput{}})), "items", "too_small"},
		{"item quantity", second(s.AddInvoice(ctx, InvoiceInput{Items: []ItemInput{{ProductName: "x", Quantity: 0}}})), "items[0].quantity", "must_be_positive"},
		{"invoice status", second(s.AddInvoice(ctx, InvoiceInput{Status: "void", Items: []ItemInput{{ProductName: "x", Quantity: 1}}})), "status", "invalid_choice"},
		{"payment amount", second(s.AddPayment(ctx, PaymentInput{InvoiceID: "inv1", Amount: dec("0")})), "amount", "must_be_positive"},
		{"payment method", second(s.AddPayment(ctx, PaymentInput{InvoiceID: "inv1", Amount: dec("1"), Method: "cheque"})), "method", "invalid_choice"},
		{"expense amount", second(s.AddExpense(ctx, ExpenseInput{Description: "Renta", Amount: dec("-5")})), "amount", "must_be_positive"},
		{"expense description", second(s.AddExpense(ctx, ExpenseInput{Amount: dec("5")})), "description", "required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr *ValidationError
			require.ErrorAs(t, tc.err, &verr)
			assert.Equal(t, tc.code, verr.Violations[tc.field], "%v", verr.Violations)
		})
	}
	assert.Zero(t, p.saves)
	assert.Len(t, s.Products(), 1)
	assert.Equal(t, "Camiseta", s.Products()[0].Name)
	assert.Empty(t, s.Clients())
	assert.Empty(t, s.Expenses())
}

func second[T any](_ T, err error) error { return err }

func TestPersistFailureIsSideEffectFree(t *testing.T) {
	s, p := newTestStore(t, models.Snapshot{Invoices: []models.Invoice{
		{ID: "inv1", Total: dec("100"), Status: models.InvoiceStatusPending},
	}})
	p.fail = errors.New("disk full")
	ctx := context.Background()

	_, err := s.AddPayment(ctx, PaymentInput{InvoiceID: "inv1", Amount: dec("100")})
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")

	assert.Empty(t, s.Payments())
	got, _ := s.Invoice("inv1")
	assert.Equal(t, models.InvoiceStatusPending, got.Status)

	_, err = s.AddExpense(ctx, ExpenseInput{Description: "Renta", Amount: dec("450")})
	require.Error(t, err)
	assert.Empty(t, s.Expenses())
}

func TestGettersReturnCopies(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{})
	ctx := context.Background()
	inv, err := s.AddInvoice(ctx, invoiceOf("10"))
	require.NoError(t, err)

	inv.Items[0].ProductName = "changed"
	list := s.Invoices()
	list[0].Status = models.InvoiceStatusPaid
	list[0].Items[0].Quantity = 99

	got, _ := s.Invoice(inv.ID)
	assert.Equal(t, "Item", got.Items[0].ProductName)
	assert.Equal(t, 1, got.Items[0].Quantity)
	assert.Equal(t, models.InvoiceStatusPending, got.Status)
}

func TestAddExpense_DefaultsDate(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{})
	ctx := context.Background()
	e, err := s.AddExpense(ctx, ExpenseInput{Description: "Luz", Amount: dec("30"), Category: "Servicios"})
	require.NoError(t, err)
	assert.True(t, e.Date.Equal(testToday))

	dated, err := s.AddExpense(ctx, ExpenseInput{Description: "Renta", Amount: dec("450"), Date: testToday.AddDate(0, 0, -3).Add(15 * time.Hour)})
	require.NoError(t, err)
	assert.True(t, dated.Date.Equal(testToday.AddDate(0, 0, -3)))
	assert.Len(t, s.Expenses(), 2)
}

func TestLookupNotFound(t *testing.T) {
	s, _ := newTestStore(t, models.Snapshot{})
	_, err := s.Product("x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Client("x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Invoice("x")
	assert.ErrorIs(t, err, ErrNotFound)
}
