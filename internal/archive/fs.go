package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS writes payloads below a local directory.
type FS struct {
	Dir string
}

func NewFS(dir string) (*FS, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("archive dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FS{Dir: dir}, nil
}

func (a *FS) Put(ctx context.Context, key, _ string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := filepath.Join(a.Dir, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, filepath.Clean(a.Dir)+string(os.PathSeparator)) {
		return fmt.Errorf("archive key escapes dir: %q", key)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
