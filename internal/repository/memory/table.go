package memory

import (
	"bytes"
	"context"
	"time"

	"shopfront/internal/domain"

	"github.com/google/btree"
	"github.com/google/uuid"
)

const treeDegree = 16

type entityPtr[T any] interface {
	*T
	domain.Entity
}

// table keeps one entity type in two B-trees: one keyed by id for lookups
// and one in listing order (created_at, id).
type table[T any, P entityPtr[T]] struct {
	byID    *btree.BTreeG[P]
	ordered *btree.BTreeG[P]
}

func lessByID[T any, P entityPtr[T]](a, b P) bool {
	return bytes.Compare(a.Meta().ID[:], b.Meta().ID[:]) < 0
}

func lessByCreation[T any, P entityPtr[T]](a, b P) bool {
	ra, rb := a.Meta(), b.Meta()
	if !ra.CreatedAt.Equal(rb.CreatedAt) {
		return ra.CreatedAt.Before(rb.CreatedAt)
	}
	return bytes.Compare(ra.ID[:], rb.ID[:]) < 0
}

func newTable[T any, P entityPtr[T]]() *table[T, P] {
	return &table[T, P]{
		byID:    btree.NewG[P](treeDegree, lessByID[T, P]),
		ordered: btree.NewG[P](treeDegree, lessByCreation[T, P]),
	}
}

// clone is lazy; both copies share nodes until one of them is written.
func (t *table[T, P]) clone() *table[T, P] {
	return &table[T, P]{byID: t.byID.Clone(), ordered: t.ordered.Clone()}
}

func copyOf[T any, P entityPtr[T]](e P) P {
	c := *e
	return P(&c)
}

func (t *table[T, P]) get(id uuid.UUID) (P, bool) {
	var key T
	k := P(&key)
	k.Meta().ID = id
	return t.byID.Get(k)
}

func (t *table[T, P]) put(e P) {
	if old, ok := t.byID.ReplaceOrInsert(e); ok {
		t.ordered.Delete(old)
	}
	t.ordered.ReplaceOrInsert(e)
}

// view is the unit-of-work side of a table: reads and writes go to a private
// snapshot and every written id is journaled for commit.
type view[T any, P entityPtr[T]] struct {
	rows     *table[T, P]
	journal  map[uuid.UUID]struct{}
	notFound error
	now      func() time.Time
	// check validates references before a row is staged.
	check func(P) error
}

func newView[T any, P entityPtr[T]](rows *table[T, P], notFound error, now func() time.Time) *view[T, P] {
	return &view[T, P]{
		rows:     rows,
		journal:  make(map[uuid.UUID]struct{}),
		notFound: notFound,
		now:      now,
	}
}

func (v *view[T, P]) filter(keep func(P) bool, descending bool) []P {
	out := []P{}
	visit := func(e P) bool {
		if e.Meta().IsActive() && (keep == nil || keep(e)) {
			out = append(out, copyOf[T](e))
		}
		return true
	}
	if descending {
		v.rows.ordered.Descend(visit)
	} else {
		v.rows.ordered.Ascend(visit)
	}
	return out
}

func (v *view[T, P]) GetAll(ctx context.Context) ([]P, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.filter(nil, false), nil
}

func (v *view[T, P]) Get(ctx context.Context, id uuid.UUID) (P, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := v.rows.get(id)
	if !ok {
		return nil, v.notFound
	}
	return copyOf[T](e), nil
}

func (v *view[T, P]) Add(ctx context.Context, entity P) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entity.Meta().Init(v.now())
	if v.check != nil {
		if err := v.check(entity); err != nil {
			return err
		}
	}
	v.stage(copyOf[T](entity))
	return nil
}

// Update replaces the mutable fields; identity, creation time and state stay
// as stored.
func (v *view[T, P]) Update(ctx context.Context, entity P) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := v.rows.get(entity.Meta().ID)
	if !ok {
		return v.notFound
	}
	if v.check != nil {
		if err := v.check(entity); err != nil {
			return err
		}
	}
	next := copyOf[T](entity)
	*next.Meta() = *stored.Meta()
	v.stage(next)
	return nil
}

func (v *view[T, P]) Remove(ctx context.Context, id uuid.UUID) error {
	return v.setState(ctx, id, domain.StateDeleted)
}

func (v *view[T, P]) Restore(ctx context.Context, id uuid.UUID) error {
	return v.setState(ctx, id, domain.StateActive)
}

func (v *view[T, P]) setState(ctx context.Context, id uuid.UUID, state domain.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, ok := v.rows.get(id)
	if !ok {
		return v.notFound
	}
	next := copyOf[T](stored)
	next.Meta().State = state
	v.stage(next)
	return nil
}

func (v *view[T, P]) stage(e P) {
	v.rows.put(e)
	v.journal[e.Meta().ID] = struct{}{}
}

// staged lists the rows this unit wrote.
func (v *view[T, P]) staged() []P {
	rows := make([]P, 0, len(v.journal))
	for id := range v.journal {
		if e, ok := v.rows.get(id); ok {
			rows = append(rows, e)
		}
	}
	return rows
}

// apply writes the journaled rows into the shared table. Rows are replaced
// whole, so concurrent units touching the same row resolve as last write wins.
func (v *view[T, P]) apply(into *table[T, P]) {
	for _, e := range v.staged() {
		into.put(e)
	}
}
