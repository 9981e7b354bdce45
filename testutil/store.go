package testutil

import "invoicing-backend/repository"

// Stores bundles fresh in-memory repositories for one test.
type Stores struct {
	Invoices  *InMemoryInvoiceStore
	Customers *InMemoryCustomerStore
	Users     *InMemoryUserStore
}

func NewStores() *Stores {
	return &Stores{
		Invoices:  NewInMemoryInvoiceStore(),
		Customers: NewInMemoryCustomerStore(),
		Users:     NewInMemoryUserStore(),
	}
}

// Store adapts the tenant repositories to a repository.Store.
func (s *Stores) Store() *repository.Store {
	return &repository.Store{Invoices: s.Invoices, Customers: s.Customers}
}
