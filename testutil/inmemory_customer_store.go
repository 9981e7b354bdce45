package testutil

import (
	"context"
	"time"

	ierr "invoicing-backend/errors"
	"invoicing-backend/models"
	"invoicing-backend/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// InMemoryCustomerStore implements repository.CustomerRepository.
type InMemoryCustomerStore struct {
	*InMemoryStore[*models.Customer]
	Now func() time.Time
}

var _ repository.CustomerRepository = (*InMemoryCustomerStore)(nil)

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*models.Customer](),
		Now:           time.Now,
	}
}

func copyCustomer(c *models.Customer) *models.Customer {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *models.Customer) error {
	if c.Id == "" {
		c.Id = uuid.NewString()
	}
	if c.InvoiceCode == "" {
		c.InvoiceCode = models.DefaultInvoiceCode(c.Name)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.Now()
	}
	c.UpdatedAt = c.CreatedAt
	return s.InMemoryStore.Create(ctx, c.Id, copyCustomer(c))
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*models.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Customer")
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) List(ctx context.Context) ([]*models.Customer, error) {
	list := s.InMemoryStore.List(ctx,
		func(c *models.Customer) bool { return !c.Archived },
		func(a, b *models.Customer) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	return lo.Map(list, func(c *models.Customer, _ int) *models.Customer { return copyCustomer(c) }), nil
}

func (s *InMemoryCustomerStore) Update(ctx context.Context, c *models.Customer) error {
	existing, err := s.InMemoryStore.Get(ctx, c.Id)
	if err != nil {
		return notFound(err, "Customer")
	}
	updated := copyCustomer(existing)
	updated.Name = c.Name
	updated.Email = c.Email
	updated.Address = c.Address
	updated.TaxNumber = c.TaxNumber
	updated.PhoneNumber = c.PhoneNumber
	updated.InvoiceCode = c.InvoiceCode
	updated.UpdatedAt = s.Now()
	return s.InMemoryStore.Update(ctx, c.Id, updated)
}

// Patch applies the editable columns present in updates.
func (s *InMemoryCustomerStore) Patch(ctx context.Context, id string, updates map[string]any) error {
	existing, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return notFound(err, "Customer")
	}
	updated := copyCustomer(existing)
	fields := map[string]*string{
		"name":         &updated.Name,
		"email":        &updated.Email,
		"address":      &updated.Address,
		"tax_number":   &updated.TaxNumber,
		"phone_number": &updated.PhoneNumber,
		"invoice_code": &updated.InvoiceCode,
	}
	for column, value := range updates {
		field, ok := fields[column]
		if !ok {
			return ierr.NewErrorf("unknown customer column %q", column).Mark(ierr.ErrDatabase)
		}
		*field, _ = value.(string)
	}
	updated.UpdatedAt = s.Now()
	return s.InMemoryStore.Update(ctx, id, updated)
}

func (s *InMemoryCustomerStore) Archive(ctx context.Context, id string) error {
	existing, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return notFound(err, "Customer")
	}
	updated := copyCustomer(existing)
	updated.Archived = true
	return s.InMemoryStore.Update(ctx, id, updated)
}
