package middlewares

import (
	"time"

	"invoicing-backend/logger"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs one line per request once the handler chain returns.
// Errors are logged with the status the ErrorHandler will assign.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e := c.App().ErrorHandler(c, err); e != nil {
				status = fiber.StatusInternalServerError
			} else {
				status = c.Response().StatusCode()
			}
		}

		schema, _ := c.Locals("schema").(string)
		logger.L.Infow("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"schema", schema,
		)
		return nil
	}
}
