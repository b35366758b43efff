package secret

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// FileProvider resolves references to files below a directory, the way
// container runtimes mount secrets (e.g. /run/secrets/redis_password).
// A single trailing newline is stripped.
type FileProvider struct {
	root *os.Root
	dir  string
}

// NewFileProvider opens dir for secret lookups.
func NewFileProvider(dir string) (*FileProvider, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("secret: open %s: %w", dir, err)
	}
	return &FileProvider{root: root, dir: dir}, nil
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the secret stored at ref. References may not leave the
// provider's directory.
func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	ref = filepath.Clean(ref)
	if !fs.ValidPath(filepath.ToSlash(ref)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	data, err := p.root.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", filepath.Join(p.dir, ref), err)
	}
	value := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(value, "\r"), nil
}

// Close releases the directory handle.
func (p *FileProvider) Close() error { return p.root.Close() }

var _ Provider = (*FileProvider)(nil)
