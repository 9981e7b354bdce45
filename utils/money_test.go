package utils

import (
	"testing"

	ierr "invoicing-backend/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"90", "USD", "$90.00"},
		{"39.99", "USD", "$39.99"},
		{"0.005", "USD", "$0.01"},
		{"1234.5", "USD", "$1,234.50"},
		{"12.3", "EUR", "€12.30"},
		{"-3", "EUR", "-€3.00"},
		{"0", "USD", "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.code+" "+tt.amount, func(t *testing.T) {
			got, err := FormatCurrency(decimal.RequireFromString(tt.amount), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCurrency_Unsupported(t *testing.T) {
	for _, code := range []string{"GBP", "XYZ", ""} {
		_, err := FormatCurrency(decimal.NewFromInt(1), code)
		assert.Error(t, err, code)
		assert.True(t, ierr.IsConfiguration(err), code)
	}
	assert.True(t, IsSupportedCurrency("EUR"))
	assert.False(t, IsSupportedCurrency("JPY"))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, "1.67", Round2(decimal.RequireFromString("1.666")).String())
	assert.Equal(t, "2.5", Round2(decimal.RequireFromString("2.5")).String())
}

func TestHasCents(t *testing.T) {
	for _, ok := range []string{"0", "12", "12.5", "0.01", "19.990"} {
		assert.True(t, HasCents(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0.125", "19.999", "0.001"} {
		assert.False(t, HasCents(decimal.RequireFromString(bad)), bad)
	}
}
