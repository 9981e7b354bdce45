package controllers

import (
	"time"

	"invoicing-backend/dashboard"
	"invoicing-backend/database"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard returns revenue stats, the 30 day chart and recent invoices.
func GetDashboard(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	invoices, err := store.Invoices.List(c.UserContext())
	if err != nil {
		return err
	}

	board, err := dashboard.Build(invoices, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(board)
}
