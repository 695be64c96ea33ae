package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect-dev/finspect/internal/model"
)

func TestReadAccounts_DerivesLevel(t *testing.T) {
	in := "code,name\n1.00.00.00,ATIVO\n1.01.00.00,ATIVO CIRCULANTE\n1.01.01.01,Caixa\n"
	accts, err := ReadAccounts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, accts, 3)
	assert.Equal(t, []int{1, 2, 4}, []int{accts[0].Level, accts[1].Level, accts[2].Level})
}

func TestReadAccounts_MalformedCode(t *testing.T) {
	_, err := ReadAccounts(strings.NewReader("code,name\n1.x,Bad\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestWriteAccounts_RoundTrip(t *testing.T) {
	accts := []model.StandardAccount{
		{Code: "1", Name: "Ativo", Level: 1},
		{Code: "1.01", Name: "Ativo, Circulante", Level: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accts))

	back, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accts, back)
}

func TestValidate(t *testing.T) {
	errs := Validate([]model.StandardAccount{
		{Code: "1", Name: "Ativo"},
		{Code: "1", Name: "Dup"},
		{Code: "1.01", Name: ""},
		{Code: "2.01", Name: "Orphan"},
		{Code: "x", Name: "Bad"},
	})
	var descs []string
	for _, e := range errs {
		descs = append(descs, e.Code+": "+e.Description)
	}
	assert.Contains(t, descs, "1: duplicate code")
	assert.Contains(t, descs, "1.01: missing name")
	assert.Contains(t, descs, "2.01: parent account not in chart")
	assert.Len(t, errs, 4)
}
