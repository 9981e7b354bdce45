package repository

import (
	"context"

	"invoicing-backend/models"

	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return translate(err, "Customer", "create customer")
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*models.Customer, error) {
	if err := checkID("Customer", id); err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Customer", "get customer")
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := r.db.WithContext(ctx).
		Where("archived = ?", false).
		Order("created_at DESC").
		Find(&customers).Error
	if err != nil {
		return nil, translate(err, "Customer", "list customers")
	}
	return customers, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	if err := checkID("Customer", customer.Id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customer.Id).
		Select("name", "email", "address", "tax_number", "phone_number", "invoice_code").
		Updates(customer)
	if res.Error != nil {
		return translate(res.Error, "Customer", "update customer")
	}
	if res.RowsAffected == 0 {
		return notFound("Customer", customer.Id)
	}
	return nil
}

func (r *customerRepository) Patch(ctx context.Context, id string, updates map[string]any) error {
	if err := checkID("Customer", id); err != nil {
		return err
	}
	if len(updates) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "Customer", "patch customer")
	}
	if res.RowsAffected == 0 {
		return notFound("Customer", id)
	}
	return nil
}

func (r *customerRepository) Archive(ctx context.Context, id string) error {
	if err := checkID("Customer", id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Update("archived", true)
	if res.Error != nil {
		return translate(res.Error, "Customer", "archive customer")
	}
	if res.RowsAffected == 0 {
		return notFound("Customer", id)
	}
	return nil
}
