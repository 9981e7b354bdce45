package utils

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

type customerPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email,omitempty"`
	Code     *string `json:"code"`
	Internal *string `json:"-"`
	Untagged *string
	Plain    string `json:"plain"`
}

func TestColumnUpdates(t *testing.T) {
	dto := &customerPatch{
		Name:     lo.ToPtr("Acme"),
		Code:     lo.ToPtr(""),
		Internal: lo.ToPtr("x"),
		Untagged: lo.ToPtr("y"),
		Plain:    "z",
	}

	got := ColumnUpdates(dto, map[string]string{"code": "invoice_code"})
	assert.Equal(t, map[string]any{"name": "Acme", "invoice_code": ""}, got)
}

func TestColumnUpdates_NotAStructPointer(t *testing.T) {
	assert.Empty(t, ColumnUpdates(customerPatch{Name: lo.ToPtr("Acme")}, nil))
	assert.Empty(t, ColumnUpdates((*customerPatch)(nil), nil))
}
