package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,234.56", 1234.56, true},
		{"(1,234.56)", -1234.56, true},
		{"-$1,234.56", -1234.56, true},
		{"1234", 1234, true},
		{"USD 75,000.00", 75000, true},
		{"$ 12.5", 12.5, true},
		{".99", 0.99, true},
		{"($45.00)", -45, true},
		{"1,234.567", 1234.57, true},
		{"", 0, false},
		{"   ", 0, false},
		{"12abc", 0, false},
		{"$1,234.56 total", 0, false},
		{"1.2.3", 0, false},
		{"--5", 0, false},
		{"(-5)", 0, false},
		{"N/A", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCurrency(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}
