package database

import (
	"strings"

	ierr "invoicing-backend/errors"
	"invoicing-backend/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// QuoteSchema renders schema as a quoted SQL identifier.
func QuoteSchema(schema string) string {
	return `"` + strings.ReplaceAll(schema, `"`, `""`) + `"`
}

// GetTenantDB returns a *gorm.DB bound to the request's tenant.
// Prefer an existing per-request TX (middlewares.TenantTx), else fall back to a session
// where we set the search_path for the connection.
func GetTenantDB(c *fiber.Ctx) (*gorm.DB, error) {
	if tx, ok := c.Locals("tx").(*gorm.DB); ok && tx != nil {
		return tx, nil
	}

	schema, _ := c.Locals("schema").(string)
	if strings.TrimSpace(schema) == "" {
		return nil, ierr.NewError("tenant schema missing").Mark(ierr.ErrUnauthorized)
	}
	if DB == nil {
		return nil, ierr.NewError("database not initialized").Mark(ierr.ErrDatabase)
	}

	sess := DB.Session(&gorm.Session{}).WithContext(c.UserContext())
	if err := sess.Exec(`SET search_path = ` + QuoteSchema(schema) + `, public`).Error; err != nil {
		return nil, ierr.WithError(err).
			WithMessage("set search_path failed").
			Mark(ierr.ErrDatabase)
	}
	return sess, nil
}

// GetTenantStore returns the repositories of the request's tenant: the store
// placed in c.Locals("store") by TenantTx, else one on GetTenantDB.
func GetTenantStore(c *fiber.Ctx) (*repository.Store, error) {
	if store, ok := c.Locals("store").(*repository.Store); ok && store != nil {
		return store, nil
	}
	db, err := GetTenantDB(c)
	if err != nil {
		return nil, err
	}
	return repository.NewStore(db), nil
}
