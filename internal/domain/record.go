package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle tag of a persisted record. Deleted records stay in
// the store but are excluded from default listings.
type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Record holds the identity and lifecycle columns shared by every
// repository-managed entity.
type Record struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	State     State     `json:"state" db:"state"`
}

// Entity is implemented by pointers to structs embedding Record.
type Entity interface {
	Meta() *Record
}

func (r *Record) Meta() *Record { return r }

// Init assigns the store-owned fields that are still unset.
func (r *Record) Init(now time.Time) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC().Truncate(time.Microsecond)
	}
	if r.State == "" {
		r.State = StateActive
	}
}

func (r *Record) IsActive() bool { return r.State == StateActive }

func (r *Record) IsDeleted() bool { return r.State == StateDeleted }
