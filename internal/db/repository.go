package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/cashpro/internal/models"
)

const batchSize = 100

// Repository persists the whole snapshot: every save replaces the previous
// state in one transaction, and positions keep collection order.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveSnapshot replaces all stored rows with snap.
func (r *Repository) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	snap = snap.Clone()
	for i := range snap.Products {
		snap.Products[i].Position = i
	}
	for i := range snap.Clients {
		snap.Clients[i].Position = i
	}
	for i := range snap.Invoices {
		snap.Invoices[i].Position = i
		for j := range snap.Invoices[i].Items {
			snap.Invoices[i].Items[j].InvoiceID = snap.Invoices[i].ID
			snap.Invoices[i].Items[j].Position = j
		}
	}
	for i := range snap.Payments {
		snap.Payments[i].Position = i
	}
	for i := range snap.Expenses {
		snap.Expenses[i].Position = i
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&models.InvoiceItem{}, &models.Payment{}, &models.Expense{}, &models.Invoice{}, &models.Client{}, &models.Product{}} {
			if err := wipe.Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		if err := createAll(tx, snap.Products); err != nil {
			return fmt.Errorf("save products: %w", err)
		}
		if err := createAll(tx, snap.Clients); err != nil {
			return fmt.Errorf("save clients: %w", err)
		}
		if err := createAll(tx, snap.Invoices); err != nil {
			return fmt.Errorf("save invoices: %w", err)
		}
		if err := createAll(tx, snap.Payments); err != nil {
			return fmt.Errorf("save payments: %w", err)
		}
		if err := createAll(tx, snap.Expenses); err != nil {
			return fmt.Errorf("save expenses: %w", err)
		}
		return nil
	})
}

func createAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, batchSize).Error
}

// LoadSnapshot reads every collection back in saved order.
func (r *Repository) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	db := r.db.WithContext(ctx)
	if err := db.Order("position").Find(&snap.Products).Error; err != nil {
		return snap, fmt.Errorf("load products: %w", err)
	}
	if err := db.Order("position").Find(&snap.Clients).Error; err != nil {
		return snap, fmt.Errorf("load clients: %w", err)
	}
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Order("position").Find(&snap.Invoices).Error
	if err != nil {
		return snap, fmt.Errorf("load invoices: %w", err)
	}
	if err := db.Order("position").Find(&snap.Payments).Error; err != nil {
		return snap, fmt.Errorf("load payments: %w", err)
	}
	if err := db.Order("position").Find(&snap.Expenses).Error; err != nil {
		return snap, fmt.Errorf("load expenses: %w", err)
	}
	normalizeDates(&snap)
	return snap, nil
}

// normalizeDates drops the location drivers attach to stored dates.
func normalizeDates(snap *models.Snapshot) {
	for i := range snap.Products {
		snap.Products[i].CreatedAt = snap.Products[i].CreatedAt.UTC()
	}
	for i := range snap.Clients {
		snap.Clients[i].CreatedAt = snap.Clients[i].CreatedAt.UTC()
	}
	for i := range snap.Invoices {
		snap.Invoices[i].CreatedAt = models.Day(snap.Invoices[i].CreatedAt.UTC())
		snap.Invoices[i].DueDate = models.Day(snap.Invoices[i].DueDate.UTC())
	}
	for i := range snap.Payments {
		snap.Payments[i].Date = models.Day(snap.Payments[i].Date.UTC())
	}
	for i := range snap.Expenses {
		snap.Expenses[i].Date = models.Day(snap.Expenses[i].Date.UTC())
	}
}

// IsEmpty reports whether nothing has been stored yet.
func IsEmpty(snap models.Snapshot) bool {
	return len(snap.Products) == 0 && len(snap.Clients) == 0 && len(snap.Invoices) == 0 &&
		len(snap.Payments) == 0 && len(snap.Expenses) == 0
}
