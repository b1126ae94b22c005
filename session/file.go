package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

// FileCache persists each key as one JSON file under a root directory.
// Writes go through a temp file and rename so readers never observe a
// partially written blob.
type FileCache[S any] struct {
	mu   sync.Mutex
	root string
}

func NewFileCache[S any](root string) *FileCache[S] {
	return &FileCache[S]{root: root}
}

func (f *FileCache[S]) path(key string) string {
	return filepath.Join(f.root, sanitizeKey(key)+".json")
}

func (f *FileCache[S]) Set(ctx context.Context, key string, val S) error {
	data, err := sonic.Marshal(val)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", key, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("commit state file: %w", err)
	}
	return nil
}

func (f *FileCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var zero S

	f.mu.Lock()
	data, err := os.ReadFile(f.path(key))
	f.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("read state file: %w", err)
	}

	var val S
	if err := sonic.Unmarshal(data, &val); err != nil {
		return zero, false, fmt.Errorf("unmarshal state for %q: %w", key, err)
	}
	return val, true, nil
}

func (f *FileCache[S]) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file: %w", err)
	}
	return nil
}

func (f *FileCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	_, err := os.Stat(f.path(key))
	f.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// sanitizeKey maps a store key to a safe file name. Bytes outside the safe
// set are percent-encoded so distinct keys never share a file.
func sanitizeKey(key string) string {
	var sb strings.Builder
	sb.Grow(len(key))
	for i := 0; i < len(key); i++ {
		b := key[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			sb.WriteByte(b)
		case b == '-' || b == '_' || b == '.':
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, "%%%02X", b)
		}
	}
	return sb.String()
}

var _ Cache[string] = (*FileCache[string])(nil)
