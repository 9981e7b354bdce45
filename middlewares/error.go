package middlewares

import (
	"reflect"
	"strings"

	ierr "invoicing-backend/errors"
	"invoicing-backend/logger"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Fiber errors (routing, body limit, explicit fiber.NewError)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	// Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fieldPath(fe.Namespace())] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "validation failed",
			"errors": out,
		})
	}

	status := ierr.HTTPStatusFromErr(err)
	if status >= fiber.StatusInternalServerError {
		logger.L.Errorw("request failed",
			"error", err,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
		)
	}
	return c.Status(status).JSON(fiber.Map{"error": ierr.PublicMessage(err)})
}

// fieldPath drops the root struct name: "createInvoiceRequest.items[0].rate"
// becomes "items[0].rate".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// jsonFieldName reports validation errors under the json names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
