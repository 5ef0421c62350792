package service

import (
	"context"
	"errors"

	"shopfront/internal/domain"
	"shopfront/internal/repository"

	"github.com/google/uuid"
)

// read runs fn in a unit of work that is always rolled back.
func read[T any](ctx context.Context, factory repository.UnitOfWorkFactory, fn func(uow repository.UnitOfWork) (T, error)) (T, error) {
	var zero T

	uow, err := factory.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer func() { _ = uow.Rollback() }()

	result, err := fn(uow)
	if err != nil {
		return zero, err
	}
	return result, nil
}

// getActive loads a record and treats soft-deleted ones as missing.
func getActive[E domain.Entity](ctx context.Context, repo repository.Repository[E], id uuid.UUID, notFound error) (E, error) {
	entity, err := repo.Get(ctx, id)
	if err != nil {
		var zero E
		return zero, err
	}
	if !entity.Meta().IsActive() {
		var zero E
		return zero, notFound
	}
	return entity, nil
}

// referenceExists reports whether id points at an active record.
func referenceExists[E domain.Entity](ctx context.Context, repo repository.Repository[E], id uuid.UUID) (bool, error) {
	if _, err := getActive(ctx, repo, id, repository.ErrNotFound); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
