package database

import (
	"context"
	"fmt"

	ierr "invoicing-backend/errors"
	"invoicing-backend/models"

	"gorm.io/gorm"
)

// AutoMigrate migrates the public schema.
func AutoMigrate() error {
	if err := DB.AutoMigrate(&models.User{}); err != nil {
		return ierr.WithError(err).
			WithMessage("public automigrate failed").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// checkConstraint adds a named CHECK constraint unless it exists.
func checkConstraint(table, name, expr string) string {
	return fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
	END IF;
END $$;`, table, name, expr)
}

var tenantConstraints = []string{
	checkConstraint("invoices", "chk_invoices_total_nonneg", "total >= 0"),
	checkConstraint("invoices", "chk_invoices_discount_nonneg", "discount >= 0"),
	checkConstraint("invoices", "chk_invoices_status", "status IN ('PAID', 'PENDING')"),
	checkConstraint("invoices", "chk_invoices_currency", "currency IN ('USD', 'EUR')"),
	checkConstraint("invoices", "chk_invoices_discount_type", "discount_type IS NULL OR discount_type IN ('FIXED', 'PERCENTAGE')"),
	checkConstraint("invoice_items", "chk_invoice_items_quantity_pos", "quantity > 0"),
	checkConstraint("invoice_items", "chk_invoice_items_rate_nonneg", "rate >= 0"),
}

var tenantIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice_position ON invoice_items (invoice_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices (created_at DESC)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_keys_key ON idempotency_keys (key)`,
}

// MigrateTenantSchema creates schema when missing and applies the
// idempotent tenant migrations inside one transaction:
// - AutoMigrate (tables/columns)
// - Indexes
// - CHECK constraints
func MigrateTenantSchema(ctx context.Context, schema string) error {
	if schema == "" {
		return ierr.NewError("schema name is empty").Mark(ierr.ErrValidation)
	}

	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`CREATE SCHEMA IF NOT EXISTS ` + QuoteSchema(schema)).Error; err != nil {
			return migrationError(err, "create schema")
		}
		if err := tx.Exec(`SET LOCAL search_path = ` + QuoteSchema(schema) + `, public`).Error; err != nil {
			return migrationError(err, "set search_path")
		}

		if err := tx.AutoMigrate(
			&models.Customer{},
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.IdempotencyKey{},
		); err != nil {
			return migrationError(err, "tenant automigrate")
		}

		for _, stmt := range tenantIndexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return migrationError(err, "index migration failed on: "+stmt)
			}
		}
		for _, stmt := range tenantConstraints {
			if err := tx.Exec(stmt).Error; err != nil {
				return migrationError(err, "check constraint migration")
			}
		}
		return nil
	})
}

func migrationError(err error, step string) error {
	return ierr.WithError(err).
		WithMessage(step).
		Mark(ierr.ErrDatabase)
}

// Provisioner creates and migrates tenant schemas on registration.
type Provisioner struct{}

func (Provisioner) Provision(ctx context.Context, schema string) error {
	return MigrateTenantSchema(ctx, schema)
}
