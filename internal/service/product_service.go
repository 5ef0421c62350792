package service

import (
	"context"
	"fmt"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
	"shopfront/internal/upload"
	"shopfront/internal/viewmodel"

	"github.com/google/uuid"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	GetAll(ctx context.Context) ([]*domain.Product, error)
	Search(ctx context.Context, query string) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, form viewmodel.ProductCreateForm, images []upload.ImageFile) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, form viewmodel.ProductUpdateForm, images []upload.ImageFile) (*domain.Product, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	units      repository.UnitOfWorkFactory
	files      upload.Store
	maxImageKB int
}

// NewProductService creates a new instance of ProductService
func NewProductService(units repository.UnitOfWorkFactory, files upload.Store, maxImageKB int) ProductService {
	return &productService{
		units:      units,
		files:      files,
		maxImageKB: maxImageKB,
	}
}

func (s *productService) GetAll(ctx context.Context) ([]*domain.Product, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]*domain.Product, error) {
		return uow.Products().GetAll(ctx)
	})
}

func (s *productService) Search(ctx context.Context, query string) ([]*domain.Product, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]*domain.Product, error) {
		return uow.Products().Search(ctx, query)
	})
}

// Get returns an active product; removed products are reported as missing
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) (*domain.Product, error) {
		return getActive(ctx, uow.Products(), id, repository.ErrProductNotFound)
	})
}

// Create validates the submission, stores the images and adds the product
// with its image records in one unit of work
func (s *productService) Create(ctx context.Context, form viewmodel.ProductCreateForm, images []upload.ImageFile) (*domain.Product, error) {
	if err := s.validate(form.ProductForm, images); err != nil {
		return nil, err
	}

	product := viewmodel.NewProduct(form)
	var stored []string

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		if err := s.checkReferences(ctx, uow, form.ProductForm); err != nil {
			return err
		}
		if err := uow.Products().Add(ctx, product); err != nil {
			return err
		}
		return s.attachImages(ctx, uow, product.ID, images, &stored)
	})
	if err != nil {
		s.discard(stored)
		return nil, err
	}

	return product, nil
}

// Update applies the form to an active product. New images are appended, or
// replace the current ones when the form asks for it
func (s *productService) Update(ctx context.Context, id uuid.UUID, form viewmodel.ProductUpdateForm, images []upload.ImageFile) (*domain.Product, error) {
	var product *domain.Product
	var stored []string

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		var err error
		product, err = getActive(ctx, uow.Products(), id, repository.ErrProductNotFound)
		if err != nil {
			return err
		}

		if err := s.validate(form.ProductForm, images); err != nil {
			return err
		}
		if err := s.checkReferences(ctx, uow, form.ProductForm); err != nil {
			return err
		}

		viewmodel.ApplyProductUpdate(product, form)
		if err := uow.Products().Update(ctx, product); err != nil {
			return err
		}

		if form.ReplaceImages {
			current, err := uow.ProductImages().ListByProduct(ctx, product.ID)
			if err != nil {
				return err
			}
			for _, image := range current {
				if err := uow.ProductImages().Remove(ctx, image.ID); err != nil {
					return err
				}
			}
		}

		return s.attachImages(ctx, uow, product.ID, images, &stored)
	})
	if err != nil {
		s.discard(stored)
		return nil, err
	}

	return product, nil
}

func (s *productService) Remove(ctx context.Context, id uuid.UUID) error {
	return repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return uow.Products().Remove(ctx, id)
	})
}

// Restore brings a removed product back into listings
func (s *productService) Restore(ctx context.Context, id uuid.UUID) error {
	return repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return uow.Products().Restore(ctx, id)
	})
}

func (s *productService) validate(form viewmodel.ProductForm, images []upload.ImageFile) error {
	if err := upload.ValidateImages(images, s.maxImageKB); err != nil {
		return imageError(err)
	}
	if violations := form.PriceViolations(); len(violations) > 0 {
		return invalid(fieldErrors(violations)...)
	}
	return nil
}

// checkReferences turns unknown or removed category and brand ids into
// field errors
func (s *productService) checkReferences(ctx context.Context, uow repository.UnitOfWork, form viewmodel.ProductForm) error {
	var fields []FieldError

	ok, err := referenceExists(ctx, uow.Categories(), form.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !ok {
		fields = append(fields, FieldError{Field: "category_id", Message: "Selected category does not exist"})
	}

	ok, err = referenceExists(ctx, uow.Brands(), form.BrandID)
	if err != nil {
		return fmt.Errorf("failed to check brand: %w", err)
	}
	if !ok {
		fields = append(fields, FieldError{Field: "brand_id", Message: "Selected brand does not exist"})
	}

	if len(fields) > 0 {
		return invalid(fields...)
	}
	return nil
}

func (s *productService) attachImages(ctx context.Context, uow repository.UnitOfWork, productID uuid.UUID, images []upload.ImageFile, stored *[]string) error {
	for _, file := range images {
		name, err := s.files.Save(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}
		*stored = append(*stored, name)

		if err := uow.ProductImages().Add(ctx, &domain.ProductImage{ProductID: productID, Image: name}); err != nil {
			return err
		}
	}
	return nil
}

// discard removes files written for a unit of work that did not commit.
func (s *productService) discard(names []string) {
	for _, name := range names {
		_ = s.files.Delete(name)
	}
}
