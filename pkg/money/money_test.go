package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

func TestParse_FormatoBR(t *testing.T) {
	cases := map[string]string{
		"R$ 1.234,56":   "1234.56",
		"1.234.567,8":   "1234567.8",
		"150":           "150",
		"  R$ 10,00 ": "10",
		"(1.000,00)":    "-1000",
		"-12,5":         "-12.5",
	}
	for in, want := range cases {
		got, err := money.Parse(in, money.FormatBR)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%q => %s, esperado %s", in, got, want)
	}
}

func TestParse_FormatoNeutral(t *testing.T) {
	got, err := money.Parse("1,234.56", money.FormatNeutral)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", got.String())
}

// Con pt-BR un número con punto decimal pierde el separador: es una elección explícita de configuración.
func TestParse_FormatoBRConPuntoDecimal(t *testing.T) {
	got, err := money.Parse("1234.56", money.FormatBR)
	require.NoError(t, err)
	assert.Equal(t, "123456", got.String())
}

func TestParse_FormatoAuto(t *testing.T) {
	cases := map[string]string{
		"1.234,56": "1234.56",
		"1,234.56": "1234.56",
		"1234.5":   "1234.5",
		"1.234":    "1234",
		"0,50":     "0.5",
	}
	for in, want := range cases {
		got, err := money.Parse(in, money.FormatAuto)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%q => %s, esperado %s", in, got, want)
	}
}

func TestParse_Invalidos(t *testing.T) {
	_, err := money.Parse("", money.FormatBR)
	assert.ErrorIs(t, err, money.ErrEmpty)

	_, err = money.Parse("R$ abc", money.FormatBR)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := money.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, money.FormatBR, f)

	_, err = money.ParseFormat("en-US")
	assert.Error(t, err)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", money.FormatBRL(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "R$ 150,00", money.FormatBRL(decimal.NewFromInt(150)))
	assert.Equal(t, "R$ 1.000.000,10", money.FormatBRL(decimal.RequireFromString("1000000.1")))
	assert.Equal(t, "R$ 0,00", money.FormatBRL(decimal.Zero))
	assert.Equal(t, "R$ -5,25", money.FormatBRL(decimal.RequireFromString("-5.25")))
}
