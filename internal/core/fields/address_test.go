package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in   string
		want Address
	}{
		{
			"123 Main St, Springfield, IL 62704",
			Address{Street: "123 Main St", City: "Springfield", State: "IL", Zip: "62704"},
		},
		{
			"123 Main St Apt 4B, Springfield, IL 62704-1234",
			Address{Street: "123 Main St", Unit: "Apt 4B", City: "Springfield", State: "IL", Zip: "62704-1234"},
		},
		{
			"500 Market Street, Suite 200, San Francisco, California 94105",
			Address{Street: "500 Market Street", Unit: "Suite 200", City: "San Francisco", State: "CA", Zip: "94105"},
		},
		{
			"77 Hill Rd #12, Charleston, West Virginia",
			Address{Street: "77 Hill Rd", Unit: "#12", City: "Charleston", State: "WV"},
		},
		{
			"9 Elm Ct",
			Address{Street: "9 Elm Ct"},
		},
		{
			"9 Elm Ct, Hartford CT 06103",
			Address{Street: "9 Elm Ct", City: "Hartford", State: "CT", Zip: "06103"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAddress(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseAddress("")
	assert.False(t, ok)
}

func TestParseAddressZipNeedsBoundary(t *testing.T) {
	got, ok := ParseAddress("1 Oak Ave, Dover, DE 123456")
	require.True(t, ok)
	assert.Empty(t, got.Zip, "six digits are not a ZIP")

	got, ok = ParseAddress("1 Oak Ave, Dover, DE,19901")
	require.True(t, ok)
	assert.Equal(t, "19901", got.Zip)
	assert.Equal(t, "DE", got.State)
}

func TestStateLookup(t *testing.T) {
	code, ok := StateCode("new york")
	assert.True(t, ok)
	assert.Equal(t, "NY", code)

	code, ok = StateCode("TX")
	assert.True(t, ok)
	assert.Equal(t, "TX", code)

	_, ok = StateCode("Atlantis")
	assert.False(t, ok)
}

func TestAddressString(t *testing.T) {
	a := Address{Street: "1 Main St", Unit: "Apt 2", City: "Austin", State: "TX", Zip: "78701"}
	assert.Equal(t, "1 Main St, Apt 2, Austin, TX 78701", a.String())
}
