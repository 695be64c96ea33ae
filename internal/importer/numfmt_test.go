package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberFormat_Parse(t *testing.T) {
	tests := []struct {
		name string
		nf   NumberFormat
		in   string
		want string
		side Side
	}{
		{"pipe debit", ContmaticPipe, "1.234,56 D", "1234.56", SideDebit},
		{"pipe credit", ContmaticPipe, " 10,00 c ", "10", SideCredit},
		{"pipe plain", ContmaticPipe, "0,50", "0.5", SideNone},
		{"pipe empty", ContmaticPipe, "", "0", SideNone},
		{"tab spaces", ContmaticTab, "1 000,25", "1000.25", SideNone},
		{"parens are not negative", BrazilianParens, "(1.500,00)", "1500", SideNone},
		{"ptbr negative", BrazilianParens, "-2,10", "-2.1", SideNone},
		{"raw cell", Spreadsheet, "1234.5", "1234.5", SideNone},
		{"string cell", Spreadsheet, "1.234,50", "1234.5", SideNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, side, err := tt.nf.Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), "got %s", d)
			assert.Equal(t, tt.side, side)
		})
	}
}

func TestNumberFormat_Errors(t *testing.T) {
	for _, in := range []string{"abc", "12,00 X", "1,2,3"} {
		_, _, err := ContmaticPipe.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestSigned(t *testing.T) {
	ten := decimal.NewFromInt(10)
	assert.True(t, Signed(ten, SideCredit, false).Equal(ten))
	assert.True(t, Signed(ten, SideDebit, false).Equal(ten.Neg()))
	assert.True(t, Signed(ten, SideDebit, true).Equal(ten))
	assert.True(t, Signed(ten, SideCredit, true).Equal(ten.Neg()))
	assert.True(t, Signed(ten, SideNone, true).Equal(ten))
}
