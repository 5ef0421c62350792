package service

import (
	"context"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
	"shopfront/internal/viewmodel"

	"github.com/google/uuid"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	GetAll(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, form viewmodel.CategoryForm) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, form viewmodel.CategoryForm) (*domain.Category, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// BrandService defines the interface for brand business logic
type BrandService interface {
	GetAll(ctx context.Context) ([]*domain.Brand, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	Create(ctx context.Context, form viewmodel.BrandForm) (*domain.Brand, error)
	Update(ctx context.Context, id uuid.UUID, form viewmodel.BrandForm) (*domain.Brand, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// catalogService implements the plain CRUD flow shared by categories and
// brands. F is the form type, build and apply map it onto the entity.
type catalogService[E domain.Entity, F any] struct {
	units    repository.UnitOfWorkFactory
	repo     func(uow repository.UnitOfWork) repository.Repository[E]
	notFound error
	build    func(F) E
	apply    func(E, F)
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(units repository.UnitOfWorkFactory) CategoryService {
	return &catalogService[*domain.Category, viewmodel.CategoryForm]{
		units: units,
		repo: func(uow repository.UnitOfWork) repository.Repository[*domain.Category] {
			return uow.Categories()
		},
		notFound: repository.ErrCategoryNotFound,
		build:    viewmodel.NewCategory,
		apply:    viewmodel.ApplyCategory,
	}
}

// NewBrandService creates a new instance of BrandService
func NewBrandService(units repository.UnitOfWorkFactory) BrandService {
	return &catalogService[*domain.Brand, viewmodel.BrandForm]{
		units: units,
		repo: func(uow repository.UnitOfWork) repository.Repository[*domain.Brand] {
			return uow.Brands()
		},
		notFound: repository.ErrBrandNotFound,
		build:    viewmodel.NewBrand,
		apply:    viewmodel.ApplyBrand,
	}
}

func (s *catalogService[E, F]) GetAll(ctx context.Context) ([]E, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]E, error) {
		return s.repo(uow).GetAll(ctx)
	})
}

func (s *catalogService[E, F]) Get(ctx context.Context, id uuid.UUID) (E, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) (E, error) {
		return getActive(ctx, s.repo(uow), id, s.notFound)
	})
}

func (s *catalogService[E, F]) Create(ctx context.Context, form F) (E, error) {
	entity := s.build(form)
	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return s.repo(uow).Add(ctx, entity)
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return entity, nil
}

func (s *catalogService[E, F]) Update(ctx context.Context, id uuid.UUID, form F) (E, error) {
	var entity E
	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		var err error
		entity, err = getActive(ctx, s.repo(uow), id, s.notFound)
		if err != nil {
			return err
		}
		s.apply(entity, form)
		return s.repo(uow).Update(ctx, entity)
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return entity, nil
}

func (s *catalogService[E, F]) Remove(ctx context.Context, id uuid.UUID) error {
	return repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return s.repo(uow).Remove(ctx, id)
	})
}
