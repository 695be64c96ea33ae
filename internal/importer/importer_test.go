package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_SoftwareNames(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name   string
		format string
	}{
		{"contmatic", "contmatic"},
		{"Modelo 2 Contmat.bv", "contmatic"},
		{"MODELO 1", "ferreiradepaula"},
		{"Modelo 5", "ferreiradepaula"},
		{"modelo 3", "dominio"},
		{"Modelo 4", "verificar"},
		{"Verificar", "verificar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.format, p.Format())
		})
	}

	assert.Equal(t, []string{"contmatic", "dominio", "ferreiradepaula", "verificar"}, r.Formats())
}

func TestRegistry_Unsupported(t *testing.T) {
	_, err := DefaultRegistry().Lookup("Alterdata")
	var use UnsupportedSoftwareError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, "Alterdata", use.Software)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&ContmaticParser{})
	assert.Panics(t, func() { r.Register(&ContmaticParser{}) })
	assert.Panics(t, func() { r.Alias("x", "missing") })
	r.Alias("x", "contmatic")
	assert.Panics(t, func() { r.Alias("X", "contmatic") })
}

func TestScanAndMarkProcessed(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range []string{"02-2024.txt", "01-2024.xlsx", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "01-2024.xlsx", files[0].Name)
	assert.Equal(t, int64(1), files[0].Size)

	require.NoError(t, MarkProcessed(root, "02-2024.txt"))
	_, err = os.Stat(filepath.Join(root, "import", "processed", "02-2024.txt"))
	assert.NoError(t, err)

	files, err = Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}
