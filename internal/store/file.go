package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const fileExt = ".json"

// File is a KV that keeps one file per key under a root directory. Writes
// go to a temporary file that is renamed into place. Update is atomic within
// one process.
type File struct {
	root string
	mu   sync.Mutex
}

// NewFile returns a File store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	return &File{root: dir}, nil
}

func escapeSegment(s string) string {
	e := url.PathEscape(s)
	if strings.HasPrefix(e, ".") {
		e = "%2E" + e[1:]
	}
	return e
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	segs := strings.Split(key, "/")
	for i, s := range segs {
		if s == "" {
			return "", fmt.Errorf("invalid key %q", key)
		}
		segs[i] = escapeSegment(s)
	}
	segs[len(segs)-1] += fileExt
	return filepath.Join(append([]string{f.root}, segs...)...), nil
}

func (f *File) key(path string) (string, error) {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		return "", err
	}
	segs := strings.Split(filepath.ToSlash(strings.TrimSuffix(rel, fileExt)), "/")
	for i, s := range segs {
		if segs[i], err = url.PathUnescape(s); err != nil {
			return "", fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	return strings.Join(segs, "/"), nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (f *File) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(key, value)
}

func (f *File) write(key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (f *File) List(_ context.Context, prefix string) ([]Entry, error) {
	// Walk from the deepest directory the prefix names completely.
	start := f.root
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		segs := strings.Split(prefix[:i], "/")
		for j, s := range segs {
			segs[j] = escapeSegment(s)
		}
		start = filepath.Join(append([]string{f.root}, segs...)...)
	}

	var out []Entry
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, fileExt) || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		k, err := f.key(path)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(k, prefix) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, Entry{Key: k, Value: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *File) Update(ctx context.Context, key string, fn UpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, err := f.Get(ctx, key)
	exists := true
	if errors.Is(err, ErrNotFound) {
		exists = false
	} else if err != nil {
		return err
	}
	v, err := fn(old, exists)
	if err != nil {
		return err
	}
	return f.write(key, v)
}

func (f *File) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (f *File) Close() error { return nil }
