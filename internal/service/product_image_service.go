package service

import (
	"context"
	"fmt"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
	"shopfront/internal/upload"

	"github.com/google/uuid"
)

// ProductImageService defines the interface for product image business logic
type ProductImageService interface {
	GetAll(ctx context.Context) ([]*domain.ProductImage, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
	Create(ctx context.Context, productID uuid.UUID, file upload.ImageFile) (*domain.ProductImage, error)
	Update(ctx context.Context, id uuid.UUID, file upload.ImageFile) (*domain.ProductImage, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type productImageService struct {
	units      repository.UnitOfWorkFactory
	files      upload.Store
	maxImageKB int
}

// NewProductImageService creates a new instance of ProductImageService
func NewProductImageService(units repository.UnitOfWorkFactory, files upload.Store, maxImageKB int) ProductImageService {
	return &productImageService{
		units:      units,
		files:      files,
		maxImageKB: maxImageKB,
	}
}

func (s *productImageService) GetAll(ctx context.Context) ([]*domain.ProductImage, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]*domain.ProductImage, error) {
		return uow.ProductImages().GetAll(ctx)
	})
}

func (s *productImageService) Get(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) (*domain.ProductImage, error) {
		return getActive(ctx, uow.ProductImages(), id, repository.ErrProductImageNotFound)
	})
}

func (s *productImageService) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]*domain.ProductImage, error) {
		return uow.ProductImages().ListByProduct(ctx, productID)
	})
}

// Create stores the file and attaches it to an active product
func (s *productImageService) Create(ctx context.Context, productID uuid.UUID, file upload.ImageFile) (*domain.ProductImage, error) {
	if err := upload.ValidateImages([]upload.ImageFile{file}, s.maxImageKB); err != nil {
		return nil, imageError(err)
	}

	var image *domain.ProductImage
	var stored string

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		if _, err := getActive(ctx, uow.Products(), productID, repository.ErrProductNotFound); err != nil {
			return err
		}

		name, err := s.files.Save(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}
		stored = name

		image = &domain.ProductImage{ProductID: productID, Image: name}
		return uow.ProductImages().Add(ctx, image)
	})
	if err != nil {
		if stored != "" {
			_ = s.files.Delete(stored)
		}
		return nil, err
	}

	return image, nil
}

// Update swaps the stored file of an image. The previous file is deleted once
// the change is committed
func (s *productImageService) Update(ctx context.Context, id uuid.UUID, file upload.ImageFile) (*domain.ProductImage, error) {
	if err := upload.ValidateImages([]upload.ImageFile{file}, s.maxImageKB); err != nil {
		return nil, imageError(err)
	}

	var image *domain.ProductImage
	var previous, stored string

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		var err error
		image, err = getActive(ctx, uow.ProductImages(), id, repository.ErrProductImageNotFound)
		if err != nil {
			return err
		}

		name, err := s.files.Save(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}
		stored = name

		previous = image.Image
		image.Image = name
		return uow.ProductImages().Update(ctx, image)
	})
	if err != nil {
		if stored != "" {
			_ = s.files.Delete(stored)
		}
		return nil, err
	}

	_ = s.files.Delete(previous)
	return image, nil
}

// Remove soft-deletes the image record and keeps its file
func (s *productImageService) Remove(ctx context.Context, id uuid.UUID) error {
	return repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return uow.ProductImages().Remove(ctx, id)
	})
}
