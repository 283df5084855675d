package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores blobs on the local filesystem, served by the HTTP
// server under baseURL (e.g. /media).
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates a local blob store rooted at dir
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Local{
		root:    dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Root returns the directory blobs are stored under
func (l *Local) Root() string {
	return l.root
}

// Save implements Store
func (l *Local) Save(_ context.Context, path string, data []byte, _ string) (string, error) {
	full := filepath.Join(l.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", path, err)
	}
	return l.baseURL + "/" + path, nil
}

// Delete implements Store
func (l *Local) Delete(_ context.Context, url string) error {
	path, ok := strings.CutPrefix(url, l.baseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is not served by this store", url)
	}
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	return nil
}
