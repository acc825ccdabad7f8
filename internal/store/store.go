// Package store owns the five business collections. Every mutation is
// validated, applied to a copy, persisted and only then committed.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diewo77/cashpro/internal/models"
	"github.com/diewo77/cashpro/internal/services"
	"github.com/diewo77/cashpro/validation"
)

// DefaultDueDays is the payment term applied when an invoice has no due date.
const DefaultDueDays = 15

// Persister writes the whole state after each mutation.
type Persister interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
}

// Observer is notified of every attempted mutation.
type Observer interface {
	ObserveMutation(entity, op string, err error)
}

type Option func(*Store)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock sets the source of "today".
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

type Store struct {
	mu   sync.RWMutex
	snap models.Snapshot

	newID     func() string
	now       func() time.Time
	persister Persister
	observer  Observer
	log       zerolog.Logger
}

// New returns a store holding a copy of initial.
func New(initial models.Snapshot, opts ...Option) *Store {
	s := &Store{
		snap:  initial.Clone(),
		newID: uuid.NewString,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the store clock truncated to the calendar day.
func (s *Store) Today() time.Time {
	return models.Day(s.now())
}

// mutate runs fn against a copy of the state, persists the copy and swaps it
// in. Nothing is kept when fn or the persister fails.
func (s *Store) mutate(ctx context.Context, entity, op string, fn func(next *models.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	err := fn(&next)
	if err == nil && s.persister != nil {
		if perr := s.persister.SaveSnapshot(ctx, next); perr != nil {
			err = fmt.Errorf("persist %s %s: %w", entity, op, perr)
		}
	}
	if s.observer != nil {
		s.observer.ObserveMutation(entity, op, err)
	}
	if err != nil {
		s.log.Debug().Err(err).Str("entity", entity).Str("op", op).Msg("mutation rejected")
		return err
	}
	s.snap = next
	return nil
}

// ---- products ----

func (s *Store) AddProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		ID:            s.newID(),
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		Unit:          in.Unit,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		TaxRate:       in.TaxRate,
		Stock:         in.Stock,
		MinStock:      in.MinStock,
		Active:        in.Active == nil || *in.Active,
		CreatedAt:     s.Today(),
	}
	err := s.mutate(ctx, "product", "add", func(next *models.Snapshot) error {
		next.Products = append(next.Products, p)
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product added")
	return p, nil
}

// UpdateProduct merges patch into the product with the given id.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch ProductPatch) error {
	return s.mutate(ctx, "product", "update", func(next *models.Snapshot) error {
		for i := range next.Products {
			if next.Products[i].ID != id {
				continue
			}
			merged := next.Products[i]
			patch.apply(&merged)
			if err := invalid(validation.Struct(productInputOf(merged))); err != nil {
				return err
			}
			next.Products[i] = merged
			return nil
		}
		return notFound("product", id)
	})
}

// DeleteProduct removes the product. Invoice lines keep their own copy.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return s.mutate(ctx, "product", "delete", func(next *models.Snapshot) error {
		for i := range next.Products {
			if next.Products[i].ID == id {
				next.Products = append(next.Products[:i], next.Products[i+1:]...)
				return nil
			}
		}
		return notFound("product", id)
	})
}

// ---- clients ----

func (s *Store) AddClient(ctx context.Context, in ClientInput) (models.Client, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return models.Client{}, err
	}
	c := models.Client{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		Notes:     in.Notes,
		CreatedAt: s.Today(),
	}
	err := s.mutate(ctx, "client", "add", func(next *models.Snapshot) error {
		next.Clients = append(next.Clients, c)
		return nil
	})
	if err != nil {
		return models.Client{}, err
	}
	s.log.Info().Str("client_id", c.ID).Str("name", c.Name).Msg("client added")
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, id string, patch ClientPatch) error {
	return s.mutate(ctx, "client", "update", func(next *models.Snapshot) error {
		for i := range next.Clients {
			if next.Clients[i].ID != id {
				continue
			}
			merged := next.Clients[i]
			patch.apply(&merged)
			if err := invalid(validation.Struct(clientInputOf(merged))); err != nil {
				return err
			}
			next.Clients[i] = merged
			return nil
		}
		return notFound("client", id)
	})
}

// DeleteClient removes the client. Its invoices keep the frozen client name.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.mutate(ctx, "client", "delete", func(next *models.Snapshot) error {
		for i := range next.Clients {
			if next.Clients[i].ID == id {
				next.Clients = append(next.Clients[:i], next.Clients[i+1:]...)
				return nil
			}
		}
		return notFound("client", id)
	})
}

// ---- invoices ----

// AddInvoice numbers the invoice, stamps it with today's date and computes
// its totals from the items. Status defaults to pending and the due date to
// DefaultDueDays after today.
func (s *Store) AddInvoice(ctx context.Context, in InvoiceInput) (models.Invoice, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return models.Invoice{}, err
	}
	today := s.Today()
	inv := models.Invoice{
		ID:         s.newID(),
		ClientID:   in.ClientID,
		ClientName: in.ClientName,
		Status:     in.Status,
		CreatedAt:  today,
		DueDate:    models.Day(in.DueDate),
		Notes:      in.Notes,
	}
	if inv.Status == "" {
		inv.Status = models.InvoiceStatusPending
	}
	if in.DueDate.IsZero() {
		inv.DueDate = today.AddDate(0, 0, DefaultDueDays)
	}
	for _, it := range in.Items {
		id := it.ID
		if id == "" {
			id = s.newID()
		}
		inv.Items = append(inv.Items, models.InvoiceItem{
			ID:          id,
			InvoiceID:   inv.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			CostPrice:   it.CostPrice,
			TaxRate:     it.TaxRate,
		})
	}
	inv.ComputeTotals()

	err := s.mutate(ctx, "invoice", "add", func(next *models.Snapshot) error {
		inv.Number = nextInvoiceNumber(next.Invoices)
		next.Invoices = append(next.Invoices, inv)
		return nil
	})
	if err != nil {
		return models.Invoice{}, err
	}
	s.log.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).
		Str("total", inv.Total.StringFixed(2)).Msg("invoice added")
	return inv.Clone(), nil
}

// nextInvoiceNumber continues after the highest issued number, so numbers
// are never reused after a deletion or import.
func nextInvoiceNumber(invoices []models.Invoice) string {
	seq := len(invoices)
	for _, inv := range invoices {
		if n, ok := models.ParseInvoiceNumber(inv.Number); ok && n > seq {
			seq = n
		}
	}
	return models.FormatInvoiceNumber(seq + 1)
}

// UpdateInvoiceStatus overwrites the stored status.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status models.InvoiceStatus) error {
	if !status.Valid() {
		return &ValidationError{Violations: validation.Violations{"status": "invalid_choice"}}
	}
	return s.mutate(ctx, "invoice", "status", func(next *models.Snapshot) error {
		for i := range next.Invoices {
			if next.Invoices[i].ID == id {
				next.Invoices[i].Status = status
				return nil
			}
		}
		return notFound("invoice", id)
	})
}

// ---- payments & expenses ----

// AddPayment records the payment and reclassifies its invoice in the same
// mutation. A payment against an unknown invoice is still recorded.
func (s *Store) AddPayment(ctx context.Context, in PaymentInput) (models.Payment, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return models.Payment{}, err
	}
	p := models.Payment{
		ID:        s.newID(),
		InvoiceID: in.InvoiceID,
		Amount:    in.Amount,
		Method:    in.Method,
		Date:      models.Day(in.Date),
		Notes:     in.Notes,
	}
	if p.Method == "" {
		p.Method = models.PaymentMethodCash
	}
	if in.Date.IsZero() {
		p.Date = s.Today()
	}

	var status models.InvoiceStatus
	err := s.mutate(ctx, "payment", "add", func(next *models.Snapshot) error {
		next.Payments = append(next.Payments, p)
		for i := range next.Invoices {
			inv := &next.Invoices[i]
			if inv.ID == p.InvoiceID {
				inv.Status = services.NextStatus(inv.Status, inv.Total, services.PaidTotal(next.Payments, inv.ID))
				status = inv.Status
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return models.Payment{}, err
	}
	if status == "" {
		s.log.Warn().Str("payment_id", p.ID).Str("invoice_id", p.InvoiceID).Msg("payment recorded for unknown invoice")
	} else {
		s.log.Info().Str("payment_id", p.ID).Str("invoice_id", p.InvoiceID).
			Str("amount", p.Amount.StringFixed(2)).Str("status", string(status)).Msg("payment added")
	}
	return p, nil
}

func (s *Store) AddExpense(ctx context.Context, in ExpenseInput) (models.Expense, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return models.Expense{}, err
	}
	e := models.Expense{
		ID:          s.newID(),
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        models.Day(in.Date),
		Notes:       in.Notes,
	}
	if in.Date.IsZero() {
		e.Date = s.Today()
	}
	err := s.mutate(ctx, "expense", "add", func(next *models.Snapshot) error {
		next.Expenses = append(next.Expenses, e)
		return nil
	})
	if err != nil {
		return models.Expense{}, err
	}
	s.log.Info().Str("expense_id", e.ID).Str("amount", e.Amount.StringFixed(2)).Msg("expense added")
	return e, nil
}

// ---- reads ----

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

func (s *Store) Products() []models.Product { return s.Snapshot().Products }
func (s *Store) Clients() []models.Client   { return s.Snapshot().Clients }
func (s *Store) Invoices() []models.Invoice { return s.Snapshot().Invoices }
func (s *Store) Payments() []models.Payment { return s.Snapshot().Payments }
func (s *Store) Expenses() []models.Expense { return s.Snapshot().Expenses }

func (s *Store) Product(id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.snap.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, notFound("product", id)
}

func (s *Store) Client(id string) (models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.snap.Clients {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Client{}, notFound("client", id)
}

func (s *Store) Invoice(id string) (models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.snap.Invoices {
		if inv.ID == id {
			return inv.Clone(), nil
		}
	}
	return models.Invoice{}, notFound("invoice", id)
}
