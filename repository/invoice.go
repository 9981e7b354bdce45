package repository

import (
	"context"
	"time"

	"invoicing-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// numberItems fixes item order and ownership before a write.
func numberItems(invoice *models.Invoice) {
	for i := range invoice.Items {
		invoice.Items[i].Position = i
		invoice.Items[i].InvoiceId = invoice.Id
	}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	for i := range invoice.Items {
		invoice.Items[i].Position = i
	}
	if err := r.db.WithContext(ctx).Omit("Customer").Create(invoice).Error; err != nil {
		return translate(err, "Invoice", "create invoice")
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*models.Invoice, error) {
	if err := checkID("Invoice", id); err != nil {
		return nil, err
	}
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "Invoice", "get invoice")
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, translate(err, "Invoice", "list invoices")
	}
	return invoices, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := checkID("Invoice", invoice.Id); err != nil {
		return err
	}
	numberItems(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invoice{}).
			Where("id = ?", invoice.Id).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(invoice)
		if res.Error != nil {
			return translate(res.Error, "Invoice", "update invoice")
		}
		if res.RowsAffected == 0 {
			return notFound("Invoice", invoice.Id)
		}

		if err := tx.Where("invoice_id = ?", invoice.Id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return translate(err, "Invoice", "delete invoice items")
		}
		if len(invoice.Items) == 0 {
			return nil
		}
		for i := range invoice.Items {
			invoice.Items[i].Id = ""
		}
		if err := tx.Create(&invoice.Items).Error; err != nil {
			return translate(err, "Invoice", "create invoice items")
		}
		return nil
	})
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	if err := checkID("Invoice", id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Select(clause.Associations).
		Delete(&models.Invoice{Id: id})
	if res.Error != nil {
		return translate(res.Error, "Invoice", "delete invoice")
	}
	if res.RowsAffected == 0 {
		return notFound("Invoice", id)
	}
	return nil
}

func (r *invoiceRepository) MarkPaid(ctx context.Context, id string, paidDate time.Time) (*models.Invoice, error) {
	if err := checkID("Invoice", id); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    models.StatusPaid,
			"paid_date": paidDate,
		})
	if res.Error != nil {
		return nil, translate(res.Error, "Invoice", "mark invoice paid")
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Invoice", id)
	}
	return r.Get(ctx, id)
}

func (r *invoiceRepository) LastInvoiceNumber(ctx context.Context) (int, error) {
	var last int
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("COALESCE(MAX(invoice_number), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, translate(err, "Invoice", "get last invoice number")
	}
	return last, nil
}
