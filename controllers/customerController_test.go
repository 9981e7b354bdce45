package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerResponse struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	InvoiceCode string `json:"invoice_code"`
	Archived    bool   `json:"archived"`
}

func TestCustomerLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/customers", fiber.Map{
		"name":    "  globex corp ",
		"email":   "ap@globex.test",
		"address": "3 Plaza",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created customerResponse
	decode(t, resp, &created)
	assert.Equal(t, "globex corp", created.Name)
	assert.Equal(t, "GL", created.InvoiceCode)

	resp = env.do(t, http.MethodPut, "/customers/"+created.Id, fiber.Map{
		"name":         "Globex",
		"email":        "ap@globex.test",
		"address":      "3 Plaza",
		"invoice_code": "GLX",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated customerResponse
	decode(t, resp, &updated)
	assert.Equal(t, "GLX", updated.InvoiceCode)

	resp = env.do(t, http.MethodGet, "/customers/"+created.Id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/customers/"+created.Id+"/archive", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Customers []customerResponse `json:"customers"`
	}
	decode(t, resp, &list)
	assert.Empty(t, list.Customers)

	// archived customers stay readable for the invoices that reference them
	stored, err := env.stores.Customers.Get(context.Background(), created.Id)
	require.NoError(t, err)
	assert.True(t, stored.Archived)
}

func TestCustomer_Rejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/customers", fiber.Map{"name": "Acme", "email": "not-an-email", "address": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var got errorResponse
	decode(t, resp, &got)
	assert.Equal(t, "email", got.Errors["email"])

	resp = env.do(t, http.MethodPut, "/customers/missing", fiber.Map{"name": "Acme", "email": "a@b.test", "address": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/customers/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchCustomer(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Acme")

	resp := env.do(t, http.MethodPatch, "/customers/"+customer.Id, fiber.Map{"invoice_code": "ACM"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got customerResponse
	decode(t, resp, &got)
	assert.Equal(t, "ACM", got.InvoiceCode)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "billing@example.com", got.Email)

	resp = env.do(t, http.MethodPatch, "/customers/"+customer.Id, fiber.Map{"email": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/customers/missing", fiber.Map{"name": "Other"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
