package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskLastFour(t *testing.T) {
	got, ok := MaskLastFour("123-45-6789")
	assert.True(t, ok)
	assert.Equal(t, "****6789", got)

	_, ok = MaskLastFour("12")
	assert.False(t, ok)

	got, ok = MaskLastFour("Acct # 0012 3456 7890 1234")
	assert.True(t, ok)
	assert.Equal(t, "****1234", got)

	got, ok = MaskLastFour("XXX-XX-4321")
	assert.True(t, ok)
	assert.Equal(t, "****4321", got)
}

func TestIsMasked(t *testing.T) {
	assert.True(t, IsMasked("****6789"))
	assert.False(t, IsMasked("123-45-6789"))
	assert.False(t, IsMasked(""))
}

func TestRedactNumbers(t *testing.T) {
	in := "SSN 123-45-6789 acct 000123456789 total 75,000.00 zip 12345"
	assert.Equal(t, "SSN ****6789 acct ****6789 total 75,000.00 zip 12345", RedactNumbers(in))
}

func TestRedactNumbersLabeledAndGrouped(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"license with letter prefix", "License No: D1234567", "License No: ****4567"},
		{"dashed account", "Account Number: 1234-5678-9012", "Account Number: ****9012"},
		{"short account", "Acct 87654321 opened", "Acct ****4321 opened"},
		{"dl hash", "DL# A12-345-678", "DL# ****5678"},
		{"spaced card", "paid with 1234 5678 9012 3456 today", "paid with ****3456 today"},
		{"id colon", "ID: 99887766", "ID: ****7766"},
		{"three digits stay", "Acct 123", "Acct 123"},
		{"label without value", "Account Summary 2024-01-31", "Account Summary 2024-01-31"},
		{"amounts and dates untouched", "Total $1,234.56 on 2024-01-15", "Total $1,234.56 on 2024-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactNumbers(tt.in))
		})
	}
}
