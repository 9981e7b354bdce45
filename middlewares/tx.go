package middlewares

import (
	"strings"

	"invoicing-backend/database"
	ierr "invoicing-backend/errors"
	"invoicing-backend/logger"
	"invoicing-backend/repository"

	"github.com/gofiber/fiber/v2"
)

// TenantTx opens a per-request DB transaction pinned to the tenant schema.
// Order: run AFTER Authenticate() (so schema/userID are present),
// and AFTER Idempotency() (so idempotency records aren't tied to the handler TX).
func TenantTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		schema, _ := c.Locals("schema").(string)
		if strings.TrimSpace(schema) == "" {
			return c.Next()
		}
		// a store injected upstream (tests) takes precedence
		if _, ok := c.Locals("store").(*repository.Store); ok {
			return c.Next()
		}
		if database.DB == nil {
			return ierr.NewError("database not initialized").Mark(ierr.ErrDatabase)
		}

		tx := database.DB.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return ierr.WithError(tx.Error).
				WithMessage("failed to begin transaction").
				Mark(ierr.ErrDatabase)
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r)
			}
			// handler errors and error statuses both roll back
			if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				logger.L.Errorw("tx commit failed", "error", e, "schema", schema)
				err = ierr.WithError(e).
					WithMessage("transaction commit failed").
					Mark(ierr.ErrDatabase)
			}
		}()

		// SET LOCAL reverts at TX end.
		if e := tx.Exec(`SET LOCAL search_path = ` + database.QuoteSchema(schema) + `, public`).Error; e != nil {
			_ = tx.Rollback()
			return ierr.WithError(e).
				WithMessage("failed to set tenant schema").
				Mark(ierr.ErrDatabase)
		}

		c.Locals("tx", tx)
		c.Locals("store", repository.NewStore(tx))

		err = c.Next()
		return err
	}
}
