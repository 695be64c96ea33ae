// Package importer turns vendor balance-sheet exports into raw accounts.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/finspect-dev/finspect/internal/code"
	"github.com/finspect-dev/finspect/internal/model"
)

// Parser converts one vendor's balance-sheet export into RawAccounts.
// Implementations reject input that does not match their layout.
type Parser interface {
	Parse(r io.Reader) ([]model.RawAccount, error)
	Format() string
}

// UnrecognizedFormatError reports input that does not match the selected parser.
type UnrecognizedFormatError struct {
	Format string
	Reason string
}

func (e UnrecognizedFormatError) Error() string {
	return fmt.Sprintf("unrecognized %s balance sheet: %s", e.Format, e.Reason)
}

// UnsupportedSoftwareError reports an accounting software with no registered parser.
type UnsupportedSoftwareError struct {
	Software string
}

func (e UnsupportedSoftwareError) Error() string {
	return fmt.Sprintf("no parser registered for accounting software %q", e.Software)
}

// Registry holds named parsers and the software names that select them.
type Registry struct {
	parsers map[string]Parser
	aliases map[string]string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser), aliases: make(map[string]string)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Alias maps an accounting-software name to a registered format.
// Panics if the format is unknown or the alias is taken.
func (r *Registry) Alias(software, format string) {
	key := strings.ToLower(software)
	if _, ok := r.parsers[strings.ToLower(format)]; !ok {
		panic("alias to unknown parser format: " + format)
	}
	if _, ok := r.aliases[key]; ok {
		panic("duplicate software alias: " + key)
	}
	r.aliases[key] = strings.ToLower(format)
}

// Get returns the parser for a format or software name, or nil.
func (r *Registry) Get(name string) Parser {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := r.parsers[key]; ok {
		return p
	}
	if f, ok := r.aliases[key]; ok {
		return r.parsers[f]
	}
	return nil
}

// Lookup is Get with an UnsupportedSoftwareError for unknown names.
func (r *Registry) Lookup(software string) (Parser, error) {
	if p := r.Get(software); p != nil {
		return p, nil
	}
	return nil, UnsupportedSoftwareError{Software: software}
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers and the
// software names accountants pick when registering a company.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ContmaticParser{})
	r.Register(&FerreiraDePaulaParser{})
	r.Register(&DominioParser{})
	r.Register(&VerificarParser{Extractor: PDFText{}})

	r.Alias("Modelo 2 Contmat.bv", "contmatic")
	r.Alias("Modelo 1", "ferreiradepaula")
	r.Alias("Modelo 5", "ferreiradepaula")
	r.Alias("Modelo 3", "dominio")
	r.Alias("Modelo 4", "verificar")
	return r
}

// importDir is the subdirectory scanned for balance-sheet uploads.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

// FileInfo describes a balance-sheet file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

var importExts = map[string]bool{".txt": true, ".csv": true, ".bv": true, ".xlsx": true, ".xls": true, ".pdf": true}

// Scan returns balance-sheet files in <root>/import/, sorted by name.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !importExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// rawAccount builds a RawAccount and derives its level from the code.
func rawAccount(codeStr, name string, b model.Balances) (model.RawAccount, error) {
	lvl, err := code.Level(codeStr)
	if err != nil {
		return model.RawAccount{}, err
	}
	return model.RawAccount{
		Code:     strings.TrimSpace(codeStr),
		Name:     strings.TrimSpace(name),
		Level:    lvl,
		Balances: b,
	}, nil
}
