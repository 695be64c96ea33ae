package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	chart := DefaultChart()
	svc := NewService(chart)

	assert.Len(t, svc.All(), len(chart))
	assert.Equal(t, 4, svc.MaxLevel())
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart())

	acct, ok := svc.Get("1.01.01.01")
	assert.True(t, ok)
	assert.Equal(t, "Caixa", acct.Name)
	assert.Equal(t, 4, acct.Level)

	_, ok = svc.Get("9.99.99.99")
	assert.False(t, ok)

	assert.True(t, svc.Exists("3.02.02.10"))
	assert.False(t, svc.Exists("3.02.02.11"))
}

func TestByLevel(t *testing.T) {
	svc := NewService(DefaultChart())

	top := svc.ByLevel(1)
	require.Len(t, top, 3)
	assert.Equal(t, "1.00.00.00", top[0].Code)
	assert.Equal(t, "3.00.00.00", top[2].Code)
}

func TestDefaultChart_CoversAnalyticsCodes(t *testing.T) {
	svc := NewService(DefaultChart())
	for _, c := range []string{
		"1.00.00.00", "1.01.00.00", "1.01.01.01", "1.01.01.02", "1.01.02.00", "1.01.02.01", "1.01.02.02",
		"1.02.01.00", "1.02.02.00", "1.02.03.00",
		"2.01.00.00", "2.01.01.00", "2.01.01.01", "2.01.02.00", "2.01.02.06", "2.02.00.00", "2.02.01.01", "2.03.00.00",
		"3.00.00.00", "3.01.01.00", "3.01.01.03", "3.01.02.00", "3.01.03.01", "3.01.04.00",
		"3.02.01.02", "3.02.02.00", "3.02.03.01", "3.02.04.01", "3.02.05.00",
	} {
		assert.True(t, svc.Exists(c), c)
	}
	assert.Empty(t, Validate(DefaultChart()))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(DefaultChart())
	require.NoError(t, svc.Save(dir))

	loaded, err := Load(filepath.Join(dir, ChartFile))
	require.NoError(t, err)
	assert.Equal(t, svc.All(), loaded.All())
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	svc, err := Load("")
	require.NoError(t, err)
	assert.True(t, svc.Exists("2.03.00.00"))
}

func TestLoad_RejectsOrphans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.csv")
	require.NoError(t, os.WriteFile(path, []byte("code,name\n1,Ativo\n2.01,Passivo Circulante\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent account not in chart")
}
