package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UnitOfWork groups one repository per entity type behind a single
// transaction. Changes made through its repositories become visible to other
// units only after Save succeeds.
type UnitOfWork interface {
	Products() ProductRepository
	Categories() CategoryRepository
	Brands() BrandRepository
	ProductImages() ProductImageRepository
	ProductComments() ProductCommentRepository
	DiscountTimers() DiscountTimerRepository

	// Save commits every staged change atomically. A unit is finished once
	// Save or Rollback has been called.
	Save(ctx context.Context) error
	// Rollback discards staged changes. It is a no-op on a finished unit.
	Rollback() error
}

// UnitOfWorkFactory starts independent units of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Store starts PostgreSQL-backed units of work.
type Store struct {
	db *sql.DB
}

var _ UnitOfWorkFactory = (*Store)(nil)

// NewStore creates a unit of work factory over an open database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens a transaction and binds a fresh set of repositories to it
func (s *Store) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}

	return &sqlUnitOfWork{
		tx:              tx,
		products:        NewProductRepository(tx),
		categories:      NewCategoryRepository(tx),
		brands:          NewBrandRepository(tx),
		productImages:   NewProductImageRepository(tx),
		productComments: NewProductCommentRepository(tx),
		discountTimers:  NewDiscountTimerRepository(tx),
	}, nil
}

type sqlUnitOfWork struct {
	tx   *sql.Tx
	done bool

	products        ProductRepository
	categories      CategoryRepository
	brands          BrandRepository
	productImages   ProductImageRepository
	productComments ProductCommentRepository
	discountTimers  DiscountTimerRepository
}

func (u *sqlUnitOfWork) Products() ProductRepository               { return u.products }
func (u *sqlUnitOfWork) Categories() CategoryRepository            { return u.categories }
func (u *sqlUnitOfWork) Brands() BrandRepository                   { return u.brands }
func (u *sqlUnitOfWork) ProductImages() ProductImageRepository     { return u.productImages }
func (u *sqlUnitOfWork) ProductComments() ProductCommentRepository { return u.productComments }
func (u *sqlUnitOfWork) DiscountTimers() DiscountTimerRepository   { return u.discountTimers }

func (u *sqlUnitOfWork) Save(ctx context.Context) error {
	if u.done {
		return ErrUnitOfWorkDone
	}
	u.done = true

	// Deferred constraints are checked here; a failed commit rolls back.
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to save unit of work: %w", translate(err))
	}
	return nil
}

func (u *sqlUnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true

	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back unit of work: %w", err)
	}
	return nil
}

// WithinUnit runs fn inside a new unit of work and saves it when fn succeeds.
// Any error from fn or from Save leaves the store unchanged.
func WithinUnit(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow, err := factory.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Rollback() }()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Save(ctx)
}
