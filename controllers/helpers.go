package controllers

import (
	ierr "invoicing-backend/errors"

	"github.com/gofiber/fiber/v2"
)

func currentUserID(c *fiber.Ctx) (string, error) {
	userID, _ := c.Locals("userID").(string)
	if userID == "" {
		return "", ierr.NewError("user missing from request context").
			WithHint("Could not retrieve user").
			Mark(ierr.ErrUnauthorized)
	}
	return userID, nil
}

func tenantSchema(c *fiber.Ctx) (string, error) {
	schema, _ := c.Locals("schema").(string)
	if schema == "" {
		return "", ierr.NewError("schema missing from request context").
			WithHint("Could not retrieve tenant schema").
			Mark(ierr.ErrUnauthorized)
	}
	return schema, nil
}
