package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

const contmaticPipe = "Balancete de Verificação - Empresa Exemplo\n" +
	"1.01.01.01|Caixa|1.000,00 D|500,00|200,00|1.300,00 D\n" +
	"2.01.01.01|Fornecedores|400,00 C|100,00|0,00|300,00 C\n" +
	"3.02.01.01|Custo das Mercadorias|0,00 D|50,00|0,00|50,00 D\n" +
	"3.01.01.01|Receita de Vendas|0,00 C|0,00|80,00|80,00 C\n" +
	"2.03.01.01|Capital Social|10,00 D|0,00|0,00|10,00 D\n" +
	"FIM"

func TestContmaticParser_Pipe(t *testing.T) {
	p := &ContmaticParser{}
	accts, err := p.Parse(strings.NewReader(contmaticPipe))
	require.NoError(t, err)
	require.Len(t, accts, 5)

	caixa := accts[0]
	assert.Equal(t, "1.01.01.01", caixa.Code)
	assert.Equal(t, "Caixa", caixa.Name)
	assert.Equal(t, 4, caixa.Level)
	assert.True(t, caixa.PreviousBalance.Equal(dec("1000")))
	assert.True(t, caixa.Debit.Equal(dec("500")))
	assert.True(t, caixa.Credit.Equal(dec("200")))
	assert.True(t, caixa.CurrentBalance.Equal(dec("1300")))
}

func TestContmaticParser_SignConvention(t *testing.T) {
	accts, err := (&ContmaticParser{}).Parse(strings.NewReader(contmaticPipe))
	require.NoError(t, err)

	byCode := map[string]decimal.Decimal{}
	for _, a := range accts {
		byCode[a.Code] = a.CurrentBalance
	}
	// Assets and costs read D as positive; everything else reads C as positive.
	assert.True(t, byCode["1.01.01.01"].Equal(dec("1300")))
	assert.True(t, byCode["3.02.01.01"].Equal(dec("50")))
	assert.True(t, byCode["2.01.01.01"].Equal(dec("300")))
	assert.True(t, byCode["3.01.01.01"].Equal(dec("80")))
	assert.True(t, byCode["2.03.01.01"].Equal(dec("-10")))
}

func TestContmaticParser_Tab(t *testing.T) {
	in := strings.Join([]string{
		"1\tATIVO\t1 000,50\t0\t0\t1000,50",
		"1.01\tATIVO CIRCULANTE\t1000,50\t0\t0\t1000,50",
		"2\tPASSIVO\t500\t0\t0\t500",
		"2.01\tPASSIVO CIRCULANTE\t500\t0\t0\t500",
		"3\tRESULTADO\t0\t0\t0\t0,00",
		"",
	}, "\r\n")
	accts, err := (&ContmaticParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accts, 5)
	assert.True(t, accts[0].PreviousBalance.Equal(dec("1000.50")))
	assert.Equal(t, 2, accts[1].Level)
}

func TestContmaticParser_TooFewLines(t *testing.T) {
	in := "1.01.01.01|Caixa|1.000,00 D|0,00|0,00|1.000,00 D\n" +
		"2.01.01.01|Fornecedores|400,00 C|0,00|0,00|400,00 C\n" +
		"3.00.00.00|Resultado|600,00 C|0,00|0,00|600,00 C\n"
	_, err := (&ContmaticParser{}).Parse(strings.NewReader(in))
	var ufe UnrecognizedFormatError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "contmatic", ufe.Format)
}

func TestContmaticParser_BadAmountIsHardError(t *testing.T) {
	in := strings.Replace(contmaticPipe, "50,00 D\n", "cinquenta D\n", 1)
	_, err := (&ContmaticParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
	assert.Contains(t, err.Error(), "current balance")
}

func TestContmaticParser_Latin1Names(t *testing.T) {
	in := strings.Replace(contmaticPipe, "Caixa", "Aplica\xe7\xf5es", 1)
	accts, err := (&ContmaticParser{}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Aplicações", accts[0].Name)
}
