package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopfront/internal/domain"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidReference = errors.New("referenced record does not exist")
	ErrUnitOfWorkDone   = errors.New("unit of work already finished")
)

// Postgres error codes the repositories translate.
const (
	pgForeignKeyViolation = "23503"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository is the data-access contract shared by every soft-deletable
// entity. Mutations are staged in the surrounding unit of work.
type Repository[E domain.Entity] interface {
	// GetAll lists active records in store order.
	GetAll(ctx context.Context) ([]E, error)
	// Get returns the record whatever its state.
	Get(ctx context.Context, id uuid.UUID) (E, error)
	Add(ctx context.Context, entity E) error
	Update(ctx context.Context, entity E) error
	// Remove marks the record deleted.
	Remove(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var recordColumns = []string{"id", "created_at", "state"}

// idEq matches one primary key. UUIDs are passed as strings: squirrel turns
// array values into IN lists.
func idEq(id uuid.UUID) squirrel.Eq {
	return squirrel.Eq{"id": id.String()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// sqlTable implements Repository[E] for one table.
type sqlTable[E domain.Entity] struct {
	db       DBTX
	name     string
	columns  []string
	create   func() E
	fields   func(E) []any
	values   func(E) map[string]any
	notFound error
	now      func() time.Time
}

func (t *sqlTable[E]) allColumns() []string {
	return append(append([]string{}, recordColumns...), t.columns...)
}

func (t *sqlTable[E]) selectFrom() squirrel.SelectBuilder {
	return psql.Select(t.allColumns()...).From(t.name)
}

func (t *sqlTable[E]) activeOnly() squirrel.SelectBuilder {
	return t.selectFrom().Where(squirrel.Eq{"state": string(domain.StateActive)})
}

func (t *sqlTable[E]) scan(row rowScanner) (E, error) {
	entity := t.create()
	rec := entity.Meta()
	dest := append([]any{&rec.ID, &rec.CreatedAt, &rec.State}, t.fields(entity)...)
	if err := row.Scan(dest...); err != nil {
		var zero E
		return zero, err
	}
	return entity, nil
}

func (t *sqlTable[E]) list(ctx context.Context, query squirrel.SelectBuilder) ([]E, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", t.name, err)
	}

	rows, err := t.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.name, err)
	}
	defer rows.Close()

	entities := []E{}
	for rows.Next() {
		entity, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}
		entities = append(entities, entity)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", t.name, err)
	}

	return entities, nil
}

// GetAll retrieves active records, oldest first
func (t *sqlTable[E]) GetAll(ctx context.Context) ([]E, error) {
	return t.list(ctx, t.activeOnly().OrderBy("created_at ASC", "id ASC"))
}

// Get retrieves a record by ID, including soft-deleted ones
func (t *sqlTable[E]) Get(ctx context.Context, id uuid.UUID) (E, error) {
	var zero E

	stmt, args, err := t.selectFrom().Where(idEq(id)).ToSql()
	if err != nil {
		return zero, fmt.Errorf("failed to build %s query: %w", t.name, err)
	}

	entity, err := t.scan(t.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, t.notFound
		}
		return zero, fmt.Errorf("failed to find %s by ID: %w", t.name, err)
	}

	return entity, nil
}

// Add inserts a new record, assigning its identity when unset
func (t *sqlTable[E]) Add(ctx context.Context, entity E) error {
	rec := entity.Meta()
	rec.Init(t.now())

	values := t.values(entity)
	values["id"] = rec.ID
	values["created_at"] = rec.CreatedAt
	values["state"] = string(rec.State)

	stmt, args, err := psql.Insert(t.name).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", t.name, err)
	}

	if _, err := t.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to create %s: %w", t.name, translate(err))
	}

	return nil
}

// Update writes the mutable columns of an existing record
func (t *sqlTable[E]) Update(ctx context.Context, entity E) error {
	stmt, args, err := psql.Update(t.name).
		SetMap(t.values(entity)).
		Where(idEq(entity.Meta().ID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s update: %w", t.name, err)
	}

	return t.exec(ctx, "update", stmt, args)
}

// Remove soft-deletes a record
func (t *sqlTable[E]) Remove(ctx context.Context, id uuid.UUID) error {
	return t.setState(ctx, id, domain.StateDeleted)
}

// Restore reactivates a soft-deleted record
func (t *sqlTable[E]) Restore(ctx context.Context, id uuid.UUID) error {
	return t.setState(ctx, id, domain.StateActive)
}

func (t *sqlTable[E]) setState(ctx context.Context, id uuid.UUID, state domain.State) error {
	stmt, args, err := psql.Update(t.name).
		Set("state", string(state)).
		Where(idEq(id)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s state change: %w", t.name, err)
	}

	return t.exec(ctx, "change state of", stmt, args)
}

func (t *sqlTable[E]) exec(ctx context.Context, verb, stmt string, args []any) error {
	result, err := t.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", verb, t.name, translate(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return t.notFound
	}

	return nil
}

// translate maps driver errors onto repository sentinels, keeping the
// original error in the chain.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	return err
}
