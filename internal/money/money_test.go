package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"19.99": 1999,
		"10":    1000,
		"0.5":   50,
		"0.005": 1,
		"0":     0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ToMinorUnits(decimal.RequireFromString(in)), in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$25.50", Format(decimal.RequireFromString("25.5")))
	assert.Equal(t, "$10.00", Format(decimal.NewFromInt(10)))
}
