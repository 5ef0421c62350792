package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
	"shopfront/internal/repository/memory"
	"shopfront/internal/upload"
	"shopfront/internal/viewmodel"

	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testMaxImageKB = 300

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func imageOfSize(name, contentType string, size int) upload.ImageFile {
	data := make([]byte, size)
	copy(data, pngHeader)
	return upload.ImageFile{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(size),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type fixture struct {
	store    *memory.Store
	fs       afero.Fs
	files    *upload.FileStore
	products ProductService
	category *domain.Category
	brand    *domain.Brand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	fs := afero.NewMemMapFs()
	files := upload.NewFileStore(fs, "uploads")

	f := &fixture{
		store:    store,
		fs:       fs,
		files:    files,
		products: NewProductService(store, files, testMaxImageKB),
	}

	ctx := context.Background()
	var err error
	f.category, err = NewCategoryService(store).Create(ctx, viewmodel.CategoryForm{Name: "Shoes"})
	require.NoError(t, err)
	f.brand, err = NewBrandService(store).Create(ctx, viewmodel.BrandForm{Name: "Acme"})
	require.NoError(t, err)

	return f
}

func (f *fixture) productForm(name string) viewmodel.ProductForm {
	return viewmodel.ProductForm{
		Name:        name,
		Description: "desc " + name,
		Price:       decimal.RequireFromString("19.99"),
		Count:       5,
		CategoryID:  f.category.ID,
		BrandID:     f.brand.ID,
	}
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()

	exists, err := afero.DirExists(f.fs, "uploads")
	require.NoError(t, err)
	if !exists {
		return nil
	}
	entries, err := afero.ReadDir(f.fs, "uploads")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

// failingStore saves up to limit files and then fails.
type failingStore struct {
	upload.Store
	limit int
	saved int
}

func (s *failingStore) Save(ctx context.Context, file upload.ImageFile) (string, error) {
	if s.saved >= s.limit {
		return "", errors.New("disk full")
	}
	s.saved++
	return s.Store.Save(ctx, file)
}

func listProducts(t *testing.T, units repository.UnitOfWorkFactory) []*domain.Product {
	t.Helper()

	products, err := NewProductService(units, nil, testMaxImageKB).GetAll(context.Background())
	require.NoError(t, err)
	return products
}
