package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{749, "INR", "₹749.00"},
		{1000, "USD", "$12.00"},
		{1000, "EUR", "€11.00"},
		{0, "USD", "$0.00"},
		{250, "GBP", "₹250.00"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.code))
		})
	}
}

func TestCodes(t *testing.T) {
	assert.Equal(t, []string{"INR", "EUR", "USD"}, Codes())
	assert.True(t, Supported("EUR"))
	assert.False(t, Supported("GBP"))
}

func TestConvertIsDisplayOnly(t *testing.T) {
	amount := 500.0
	_ = Convert(amount, "USD")
	assert.Equal(t, 500.0, amount)
	assert.InDelta(t, 6.0, Convert(amount, "USD"), 1e-9)
}
