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

// InMemoryInvoiceStore implements repository.InvoiceRepository.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*models.Invoice]
	Now func() time.Time
}

var _ repository.InvoiceRepository = (*InMemoryInvoiceStore)(nil)

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*models.Invoice](),
		Now:           time.Now,
	}
}

func copyInvoice(in *models.Invoice) *models.Invoice {
	if in == nil {
		return nil
	}
	out := *in
	out.Items = append([]models.InvoiceItem(nil), in.Items...)
	out.Customer = nil
	if in.DiscountType != nil {
		out.DiscountType = lo.ToPtr(*in.DiscountType)
	}
	if in.PaidDate != nil {
		out.PaidDate = lo.ToPtr(*in.PaidDate)
	}
	return &out
}

func (s *InMemoryInvoiceStore) stampItems(invoice *models.Invoice) {
	for i := range invoice.Items {
		invoice.Items[i].Id = uuid.NewString()
		invoice.Items[i].InvoiceId = invoice.Id
		invoice.Items[i].Position = i
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.Id == "" {
		invoice.Id = uuid.NewString()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = s.Now()
	}
	invoice.UpdatedAt = invoice.CreatedAt
	s.stampItems(invoice)
	return s.InMemoryStore.Create(ctx, invoice.Id, copyInvoice(invoice))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Invoice")
	}
	return copyInvoice(invoice), nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context) ([]*models.Invoice, error) {
	list := s.InMemoryStore.List(ctx, nil, func(a, b *models.Invoice) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return lo.Map(list, func(in *models.Invoice, _ int) *models.Invoice { return copyInvoice(in) }), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, invoice *models.Invoice) error {
	existing, err := s.InMemoryStore.Get(ctx, invoice.Id)
	if err != nil {
		return notFound(err, "Invoice")
	}
	invoice.CreatedAt = existing.CreatedAt
	invoice.UpdatedAt = s.Now()
	s.stampItems(invoice)
	return s.InMemoryStore.Update(ctx, invoice.Id, copyInvoice(invoice))
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return notFound(err, "Invoice")
	}
	return nil
}

func (s *InMemoryInvoiceStore) MarkPaid(ctx context.Context, id string, paidDate time.Time) (*models.Invoice, error) {
	invoice, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Invoice")
	}
	updated := copyInvoice(invoice)
	updated.Status = models.StatusPaid
	updated.PaidDate = &paidDate
	if err := s.InMemoryStore.Update(ctx, id, updated); err != nil {
		return nil, err
	}
	return copyInvoice(updated), nil
}

func (s *InMemoryInvoiceStore) LastInvoiceNumber(ctx context.Context) (int, error) {
	list := s.InMemoryStore.List(ctx, nil, nil)
	return lo.Reduce(list, func(acc int, in *models.Invoice, _ int) int {
		return max(acc, in.InvoiceNumber)
	}, 0), nil
}

// notFound adds the caller facing hint the gorm repositories attach.
func notFound(err error, entity string) error {
	if !ierr.IsNotFound(err) {
		return err
	}
	return ierr.WithError(err).WithHint(entity + " not found").Mark(ierr.ErrNotFound)
}
