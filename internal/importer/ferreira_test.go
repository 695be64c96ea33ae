package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFerreiraDePaulaParser_Semicolon(t *testing.T) {
	in := "Seq;Conta;Descrição;Anterior;Débito;Crédito;Atual;\n" +
		"1;1.01.01;Caixa;1.234,56;(100,00);0,00;1.134,56;\n" +
		"2;;1.01.02;Bancos;10,00;0,00;0,00;10,00;;\n" +
		"linha solta sem conta\n"
	accts, err := (&FerreiraDePaulaParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accts, 2)

	assert.Equal(t, "1.01.01", accts[0].Code)
	assert.Equal(t, "Caixa", accts[0].Name)
	assert.Equal(t, 3, accts[0].Level)
	assert.True(t, accts[0].PreviousBalance.Equal(dec("1234.56")))
	// Parentheses are stripped, not read as a negative sign.
	assert.True(t, accts[0].Debit.Equal(dec("100")))
	assert.True(t, accts[0].CurrentBalance.Equal(dec("1134.56")))

	assert.Equal(t, "1.01.02", accts[1].Code)
}

func TestFerreiraDePaulaParser_Tab(t *testing.T) {
	in := "7\t1.01\tBancos\t10,00\t0,00\t0,00\t10,00\t\n" +
		"8\t2.01\tFornecedores\t5,00\t1,00\t0,00\t4,00\t\n"
	accts, err := (&FerreiraDePaulaParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accts, 2)
	assert.Equal(t, "Fornecedores", accts[1].Name)
	assert.True(t, accts[1].CurrentBalance.Equal(dec("4")))
}

func TestFerreiraDePaulaParser_Unrecognized(t *testing.T) {
	_, err := (&FerreiraDePaulaParser{}).Parse(strings.NewReader("1.01|Caixa|1,00|0|0|1,00\n"))
	var ufe UnrecognizedFormatError
	assert.True(t, errors.As(err, &ufe))
}

func TestFerreiraDePaulaParser_BadCode(t *testing.T) {
	_, err := (&FerreiraDePaulaParser{}).Parse(strings.NewReader("1;1.x;Caixa;1,00;0,00;0,00;1,00;\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}
