package fsxlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/hojavida/pkg/fsx"
)

// LocalFileSystem stores objects as files below a root directory. It backs
// development setups and the render command; it has no URL signing.
type LocalFileSystem struct {
	root string
}

var _ fsx.FileSystem = (*LocalFileSystem)(nil)

// NewLocalFileSystem creates the root directory if needed
func NewLocalFileSystem(root string) (*LocalFileSystem, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", root, err)
	}
	return &LocalFileSystem{root: root}, nil
}

// resolve maps an object key to a path that cannot escape root
func (fs *LocalFileSystem) resolve(p string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(p))
	full := filepath.Join(fs.root, clean)
	rel, err := filepath.Rel(fs.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", p)
	}
	return full, nil
}

func (fs *LocalFileSystem) Join(elem ...string) string {
	return filepath.ToSlash(filepath.Join(elem...))
}

// WriteFile writes through a temp file and rename so readers never see a
// partial object. Content type and metadata are not persisted.
func (fs *LocalFileSystem) WriteFile(ctx context.Context, p string, data []byte, _ ...fsx.WriteOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := fs.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", p, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", p, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}

func (fs *LocalFileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader, opts ...fsx.WriteOption) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read stream for %s: %w", p, err)
	}
	return fs.WriteFile(ctx, p, data, opts...)
}

func (fs *LocalFileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	full, err := fs.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", fsx.ErrNotExist, p)
	}
	return data, err
}

func (fs *LocalFileSystem) DeleteFile(ctx context.Context, p string) error {
	full, err := fs.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (fs *LocalFileSystem) Exists(ctx context.Context, p string) (bool, error) {
	full, err := fs.resolve(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
