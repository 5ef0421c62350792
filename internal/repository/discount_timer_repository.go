package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopfront/internal/domain"

	"github.com/Masterminds/squirrel"
)

var (
	ErrDiscountTimerNotFound = fmt.Errorf("discount timer %w", ErrNotFound)
)

// DiscountTimerRepository reads and writes the single site-wide discount timer.
type DiscountTimerRepository interface {
	Get(ctx context.Context) (*domain.DiscountTimer, error)
	// Save overwrites the timer, creating the row when it is missing.
	Save(ctx context.Context, timer *domain.DiscountTimer) error
}

type discountTimerRepository struct {
	db  DBTX
	now func() time.Time
}

// NewDiscountTimerRepository creates a new instance of DiscountTimerRepository
func NewDiscountTimerRepository(db DBTX) DiscountTimerRepository {
	return &discountTimerRepository{db: db, now: time.Now}
}

func (r *discountTimerRepository) Get(ctx context.Context) (*domain.DiscountTimer, error) {
	stmt, args, err := psql.Select("id", "title", "ends_at", "updated_at").
		From("discount_timers").
		Where(squirrel.Eq{"id": domain.DiscountTimerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build discount timer query: %w", err)
	}

	timer := &domain.DiscountTimer{}
	err = r.db.QueryRowContext(ctx, stmt, args...).Scan(
		&timer.ID,
		&timer.Title,
		&timer.EndsAt,
		&timer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiscountTimerNotFound
		}
		return nil, fmt.Errorf("failed to find discount timer: %w", err)
	}

	return timer, nil
}

func (r *discountTimerRepository) Save(ctx context.Context, timer *domain.DiscountTimer) error {
	timer.ID = domain.DiscountTimerID
	timer.EndsAt = timer.EndsAt.UTC().Truncate(time.Microsecond)
	timer.UpdatedAt = r.now().UTC().Truncate(time.Microsecond)

	stmt, args, err := psql.Insert("discount_timers").
		Columns("id", "title", "ends_at", "updated_at").
		Values(timer.ID, timer.Title, timer.EndsAt, timer.UpdatedAt).
		Suffix("ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, ends_at = EXCLUDED.ends_at, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build discount timer upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to save discount timer: %w", err)
	}

	return nil
}
