// Package repository is the persistence boundary. Every implementation maps
// a missing row to ierr.ErrNotFound and other driver failures to
// ierr.ErrDatabase.
package repository

import (
	"context"
	"time"

	"invoicing-backend/models"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	// Create stores invoice with its items, numbered by slice order.
	Create(ctx context.Context, invoice *models.Invoice) error
	// Get returns the invoice with items in position order.
	Get(ctx context.Context, id string) (*models.Invoice, error)
	// List returns every invoice newest first, items included.
	List(ctx context.Context) ([]*models.Invoice, error)
	// Update overwrites the invoice and replaces all of its items.
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string, paidDate time.Time) (*models.Invoice, error)
	// LastInvoiceNumber is the highest invoice number, 0 when there is none.
	LastInvoiceNumber(ctx context.Context) (int, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Get(ctx context.Context, id string) (*models.Customer, error)
	// List returns customers that are not archived, newest first.
	List(ctx context.Context) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	// Patch updates only the given columns.
	Patch(ctx context.Context, id string, updates map[string]any) error
	Archive(ctx context.Context, id string) error
}

// UserRepository works on the public schema.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// Store groups the tenant scoped repositories of one request.
type Store struct {
	Invoices  InvoiceRepository
	Customers CustomerRepository
}

// NewStore binds the tenant repositories to db, usually the request
// transaction pinned to the tenant schema.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		Invoices:  NewInvoiceRepository(db),
		Customers: NewCustomerRepository(db),
	}
}
