package controllers

import (
	"invoicing-backend/database"
	"invoicing-backend/middlewares"
	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type customerRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Address     string `json:"address" validate:"required"`
	TaxNumber   string `json:"tax_number"`
	PhoneNumber string `json:"phone_number"`
	InvoiceCode string `json:"invoice_code" validate:"omitempty,min=2,max=10"`
}

// customerPatchRequest carries only the fields to change.
type customerPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address" validate:"omitempty,min=1"`
	TaxNumber   *string `json:"tax_number"`
	PhoneNumber *string `json:"phone_number"`
	InvoiceCode *string `json:"invoice_code" validate:"omitempty,min=2,max=10"`
}

func (r customerRequest) toModel(id string) *models.Customer {
	return &models.Customer{
		Id:          id,
		Name:        r.Name,
		Email:       r.Email,
		Address:     r.Address,
		TaxNumber:   r.TaxNumber,
		PhoneNumber: r.PhoneNumber,
		InvoiceCode: r.InvoiceCode,
	}
}

func CreateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	customer := req.toModel("")
	if err := store.Customers.Create(c.UserContext(), customer); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func GetCustomers(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	customers, err := store.Customers.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"customers": customers,
		"message":   "success",
	})
}

func GetCustomer(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	customer, err := store.Customers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(customer)
}

func UpdateCustomer(c *fiber.Ctx) error {
	var req customerRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	customer := req.toModel(c.Params("id"))
	if customer.InvoiceCode == "" {
		customer.InvoiceCode = models.DefaultInvoiceCode(customer.Name)
	}
	if err := store.Customers.Update(ctx, customer); err != nil {
		return err
	}

	updated, err := store.Customers.Get(ctx, customer.Id)
	if err != nil {
		return err
	}
	return c.JSON(updated)
}

func PatchCustomer(c *fiber.Ctx) error {
	var req customerPatchRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	id := c.Params("id")
	if err := store.Customers.Patch(ctx, id, utils.ColumnUpdates(&req, nil)); err != nil {
		return err
	}

	customer, err := store.Customers.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(customer)
}

// ArchiveCustomer hides a customer from listings; invoices keep their copy
// of the billing details.
func ArchiveCustomer(c *fiber.Ctx) error {
	store, err := database.GetTenantStore(c)
	if err != nil {
		return err
	}

	if err := store.Customers.Archive(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}
