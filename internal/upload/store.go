package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var ErrUnsafePath = errors.New("refusing to touch a path outside the upload directory")

// Store persists image files and returns the name they were stored under.
type Store interface {
	Save(ctx context.Context, file ImageFile) (string, error)
	Delete(name string) error
}

// FileStore keeps uploads as flat files in one directory of an afero
// filesystem.
type FileStore struct {
	fs  afero.Fs
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store writing into dir on fs
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: filepath.Clean(dir)}
}

// NewDiskStore creates a store on the operating system filesystem
func NewDiskStore(dir string) *FileStore {
	return NewFileStore(afero.NewOsFs(), dir)
}

// Dir is the directory files are written to
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the file as <uuid><ext>. The extension comes from the sniffed
// content, falling back to the submitted file name.
func (s *FileStore) Save(ctx context.Context, file ImageFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", file.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", file.Filename, err)
	}

	ext := mimetype.Detect(data).Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(file.Filename))
	}
	name := uuid.NewString() + ext

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store upload %s: %w", file.Filename, err)
	}

	return name, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *FileStore) Delete(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	if filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	if err := s.fs.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete upload %s: %w", name, err)
	}
	return nil
}
