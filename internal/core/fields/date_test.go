package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		// documented formats
		{"2024-03-15", "2024-03-15", true},
		{"3/15/2024", "2024-03-15", true},
		{"03/15/24", "2024-03-15", true},
		{"March 15, 2024", "2024-03-15", true},
		{"15 March 2024", "2024-03-15", true},

		{"Mar 5, 2024", "2024-03-05", true},
		{"Sept. 1, 2023", "2023-09-01", true},
		{"1st Jan 2020", "2020-01-01", true},
		{"12/31/99", "1999-12-31", true},
		{"1/1/49", "2049-01-01", true},
		{"1/1/50", "1950-01-01", true},
		{"2024-01-31T10:00:00Z", "2024-01-31", true},
		{"2024/02/29", "2024-02-29", true},
		{"15-Mar-2024", "2024-03-15", true},

		{"2024-02-30", "", false},
		{"2/30/2024", "", false},
		{"2023-02-29", "", false},
		{"13/01/2024", "", false},
		{"Smarch 1, 2024", "", false},
		{"", "", false},
		{"yesterday", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
