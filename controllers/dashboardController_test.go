package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboard(t *testing.T) {
	env := newTestEnv(t)
	customer := env.addCustomer(t, "Acme")
	env.seedInvoice(t, customer, 1)
	env.seedInvoice(t, customer, 2)

	resp := env.do(t, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Stats struct {
			Issued  int `json:"issued"`
			Pending int `json:"pending"`
		} `json:"stats"`
		Recent []struct {
			ClientName string `json:"client_name"`
			Total      string `json:"total"`
		} `json:"recent"`
	}
	decode(t, resp, &got)
	assert.Equal(t, 2, got.Stats.Issued)
	assert.Equal(t, 2, got.Stats.Pending)
	require.Len(t, got.Recent, 2)
	assert.Equal(t, "Acme", got.Recent[0].ClientName)
	assert.Equal(t, "$100.00", got.Recent[0].Total)
}
