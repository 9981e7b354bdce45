package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"invoicing-backend/database"
	ierr "invoicing-backend/errors"
	"invoicing-backend/logger"
	"invoicing-backend/models"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	idempotencyHeader = "Idempotency-Key"
	maxKeyLength      = 128
)

// requestHash is sha256 of method|path|body|schema|user.
func requestHash(method, path string, body []byte, schema, userID string) string {
	h := sha256.New()
	for _, part := range [][]byte{[]byte(method), []byte(path), body, []byte(schema), []byte(userID)} {
		h.Write(part)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency replays the stored response of a mutating request sent again
// with the same Idempotency-Key. It uses its own short transactions so the
// record survives a rollback of the handler transaction.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyHeader))
		if key == "" || database.DB == nil {
			return c.Next()
		}
		if len(key) > maxKeyLength {
			return ierr.NewError("idempotency key too long").
				WithHint("Idempotency-Key too long").
				Mark(ierr.ErrValidation)
		}

		schema, _ := c.Locals("schema").(string)
		userID, _ := c.Locals("userID").(string)
		if schema == "" || userID == "" {
			return ierr.NewError("auth context missing").
				WithHint("auth context missing").
				Mark(ierr.ErrUnauthorized)
		}

		path := c.OriginalURL()
		reqHash := requestHash(method, path, c.Body(), schema, userID)

		var existing models.IdempotencyKey
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(`SET LOCAL search_path = ` + database.QuoteSchema(schema) + `, public`).Error; err != nil {
				return err
			}

			err := tx.Where("key = ?", key).First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				existing = models.IdempotencyKey{
					Key:          key,
					RequestHash:  reqHash,
					Method:       method,
					Path:         path,
					TenantSchema: schema,
					UserID:       userID,
				}
				if err := tx.Create(&existing).Error; err != nil {
					// lost a race against a concurrent first request
					return tx.Where("key = ?", key).First(&existing).Error
				}
				return nil
			}
			return err
		})
		if err != nil {
			return ierr.WithError(err).
				WithMessage("idempotency lookup failed").
				Mark(ierr.ErrDatabase)
		}

		if existing.RequestHash != reqHash {
			return ierr.NewErrorf("idempotency key %s reused", key).
				WithHint("Idempotency-Key reuse with different request").
				Mark(ierr.ErrAlreadyExists)
		}
		if existing.Completed() {
			c.Set(fiber.HeaderContentType, existing.ContentType)
			return c.Status(existing.ResponseStatus).Send(existing.ResponseBody)
		}

		if err := c.Next(); err != nil {
			return err
		}

		// best effort: a failed write must not break the successful response
		now := time.Now().UTC()
		body := append([]byte(nil), c.Response().Body()...)
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(`SET LOCAL search_path = ` + database.QuoteSchema(schema) + `, public`).Error; err != nil {
				return err
			}
			return tx.Model(&models.IdempotencyKey{}).
				Where("key = ?", key).
				Updates(map[string]any{
					"response_status": c.Response().StatusCode(),
					"response_body":   body,
					"content_type":    string(c.Response().Header.ContentType()),
					"completed_at":    &now,
				}).Error
		})
		if err != nil {
			logger.L.Warnw("failed to store idempotent response", "error", err, "key", key, "schema", schema)
		}
		return nil
	}
}
