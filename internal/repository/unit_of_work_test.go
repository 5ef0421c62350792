package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopfront/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func countRows(t *testing.T, table string) int {
	t.Helper()

	var count int
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return count
}

// A failing commit leaves none of the unit's changes visible
func TestUnitOfWork_SaveIsAtomic(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()

	uow, err := NewStore(testDB).Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if err := uow.Categories().Add(ctx, &domain.Category{Name: "Staged"}); err != nil {
		t.Fatalf("Add category failed: %v", err)
	}
	// The product reference is deferred, so the violation only shows on commit.
	if err := uow.ProductImages().Add(ctx, &domain.ProductImage{ProductID: uuid.New(), Image: "x.png"}); err != nil {
		t.Fatalf("Add image should be staged without error: %v", err)
	}

	err = uow.Save(ctx)
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("Expected ErrInvalidReference from Save, got %v", err)
	}

	if n := countRows(t, "categories"); n != 0 {
		t.Errorf("Expected no categories after failed save, found %d", n)
	}
	if n := countRows(t, "product_images"); n != 0 {
		t.Errorf("Expected no images after failed save, found %d", n)
	}
}

func TestUnitOfWork_RollbackDiscardsChanges(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()

	uow, err := NewStore(testDB).Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := uow.Brands().Add(ctx, &domain.Brand{Name: "Ghost"}); err != nil {
		t.Fatalf("Add brand failed: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if n := countRows(t, "brands"); n != 0 {
		t.Errorf("Expected rolled back brand to be invisible, found %d", n)
	}
}

func TestUnitOfWork_FinishedUnit(t *testing.T) {
	ctx := context.Background()

	uow, err := NewStore(testDB).Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := uow.Save(ctx); err != nil {
		t.Fatalf("Save of an empty unit failed: %v", err)
	}
	if err := uow.Save(ctx); !errors.Is(err, ErrUnitOfWorkDone) {
		t.Errorf("Expected ErrUnitOfWorkDone, got %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Errorf("Rollback after Save should be a no-op, got %v", err)
	}
}

func TestUnitOfWork_RepositoriesAreStable(t *testing.T) {
	ctx := context.Background()

	uow, err := NewStore(testDB).Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer uow.Rollback()

	if uow.Products() != uow.Products() || uow.Categories() != uow.Categories() ||
		uow.ProductComments() != uow.ProductComments() {
		t.Error("Repeated accessor calls should return the same repository")
	}
}

func TestWithinUnit_ErrorRollsBack(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithinUnit(ctx, NewStore(testDB), func(uow UnitOfWork) error {
		if err := uow.Categories().Add(ctx, &domain.Category{Name: "Never"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected the callback error, got %v", err)
	}
	if n := countRows(t, "categories"); n != 0 {
		t.Errorf("Expected no categories, found %d", n)
	}
}

func TestChildRepositories_ListByProduct(t *testing.T) {
	resetCatalog(t)
	ctx := context.Background()
	store := NewStore(testDB)

	product := addProduct(t, "Lamp")
	other := addProduct(t, "Desk")

	var first, second *domain.ProductComment
	err := WithinUnit(ctx, store, func(uow UnitOfWork) error {
		for _, name := range []string{"a.png", "b.png"} {
			if err := uow.ProductImages().Add(ctx, &domain.ProductImage{ProductID: product.ID, Image: name}); err != nil {
				return err
			}
		}
		if err := uow.ProductImages().Add(ctx, &domain.ProductImage{ProductID: other.ID, Image: "c.png"}); err != nil {
			return err
		}

		first = &domain.ProductComment{ProductID: product.ID, UserID: "u1", Text: "first"}
		if err := uow.ProductComments().Add(ctx, first); err != nil {
			return err
		}
		second = &domain.ProductComment{
			Record:    domain.Record{CreatedAt: first.CreatedAt.Add(time.Second)},
			ProductID: product.ID,
			UserID:    "u2",
			Text:      "second",
		}
		return uow.ProductComments().Add(ctx, second)
	})
	if err != nil {
		t.Fatalf("Seeding children failed: %v", err)
	}

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer uow.Rollback()

	images, err := uow.ProductImages().ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("ListByProduct images failed: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("Expected 2 images for the product, got %d", len(images))
	}

	comments, err := uow.ProductComments().ListByProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("ListByProduct comments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != second.ID || comments[1].ID != first.ID {
		t.Errorf("Expected comments newest first")
	}
}

// Saving the discount timer overwrites the single row
func TestProperty_DiscountTimerLastWriteWins(t *testing.T) {
	store := NewStore(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("get returns the most recent save", prop.ForAll(
		func(firstTitle, secondTitle string, hours int) bool {
			ctx := context.Background()
			endsAt := time.Now().Add(time.Duration(hours) * time.Hour)

			for _, title := range []string{firstTitle, secondTitle} {
				err := WithinUnit(ctx, store, func(uow UnitOfWork) error {
					return uow.DiscountTimers().Save(ctx, &domain.DiscountTimer{Title: title, EndsAt: endsAt})
				})
				if err != nil {
					t.Logf("FAIL: Save failed: %v", err)
					return false
				}
			}

			uow, err := store.Begin(ctx)
			if err != nil {
				t.Logf("FAIL: Begin failed: %v", err)
				return false
			}
			defer uow.Rollback()

			timer, err := uow.DiscountTimers().Get(ctx)
			if err != nil {
				t.Logf("FAIL: Get failed: %v", err)
				return false
			}

			return timer.ID == domain.DiscountTimerID &&
				timer.Title == secondTitle &&
				timer.EndsAt.Equal(endsAt.UTC().Truncate(time.Microsecond)) &&
				countRows(t, "discount_timers") == 1
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(1, 720),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
