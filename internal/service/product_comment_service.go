package service

import (
	"context"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
	"shopfront/internal/viewmodel"

	"github.com/google/uuid"
)

// ProductCommentService defines the interface for comment business logic
type ProductCommentService interface {
	GetAll(ctx context.Context) ([]*domain.ProductComment, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProductComment, error)
	// GetProductID lists the comments of one product, newest first.
	GetProductID(ctx context.Context, productID uuid.UUID) ([]*domain.ProductComment, error)
	Create(ctx context.Context, productID uuid.UUID, userID string, form viewmodel.CommentForm) (*domain.ProductComment, error)
	Update(ctx context.Context, id uuid.UUID, form viewmodel.CommentForm) (*domain.ProductComment, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type productCommentService struct {
	units repository.UnitOfWorkFactory
}

// NewProductCommentService creates a new instance of ProductCommentService
func NewProductCommentService(units repository.UnitOfWorkFactory) ProductCommentService {
	return &productCommentService{units: units}
}

func (s *productCommentService) GetAll(ctx context.Context) ([]*domain.ProductComment, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]*domain.ProductComment, error) {
		return uow.ProductComments().GetAll(ctx)
	})
}

func (s *productCommentService) Get(ctx context.Context, id uuid.UUID) (*domain.ProductComment, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) (*domain.ProductComment, error) {
		return getActive(ctx, uow.ProductComments(), id, repository.ErrProductCommentNotFound)
	})
}

func (s *productCommentService) GetProductID(ctx context.Context, productID uuid.UUID) ([]*domain.ProductComment, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) ([]*domain.ProductComment, error) {
		return uow.ProductComments().ListByProduct(ctx, productID)
	})
}

// Create adds a comment by userID to an active product
func (s *productCommentService) Create(ctx context.Context, productID uuid.UUID, userID string, form viewmodel.CommentForm) (*domain.ProductComment, error) {
	comment := viewmodel.NewComment(productID, userID, form)

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		if _, err := getActive(ctx, uow.Products(), productID, repository.ErrProductNotFound); err != nil {
			return err
		}
		return uow.ProductComments().Add(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *productCommentService) Update(ctx context.Context, id uuid.UUID, form viewmodel.CommentForm) (*domain.ProductComment, error) {
	var comment *domain.ProductComment

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		var err error
		comment, err = getActive(ctx, uow.ProductComments(), id, repository.ErrProductCommentNotFound)
		if err != nil {
			return err
		}
		comment.Text = form.Text
		return uow.ProductComments().Update(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *productCommentService) Remove(ctx context.Context, id uuid.UUID) error {
	return repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return uow.ProductComments().Remove(ctx, id)
	})
}
