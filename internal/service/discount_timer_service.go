package service

import (
	"context"

	"shopfront/internal/domain"
	"shopfront/internal/repository"
	"shopfront/internal/viewmodel"
)

// DiscountTimerService reads and overwrites the site-wide discount timer
type DiscountTimerService interface {
	Get(ctx context.Context) (*domain.DiscountTimer, error)
	Update(ctx context.Context, form viewmodel.DiscountTimerForm) (*domain.DiscountTimer, error)
}

type discountTimerService struct {
	units repository.UnitOfWorkFactory
}

// NewDiscountTimerService creates a new instance of DiscountTimerService
func NewDiscountTimerService(units repository.UnitOfWorkFactory) DiscountTimerService {
	return &discountTimerService{units: units}
}

func (s *discountTimerService) Get(ctx context.Context) (*domain.DiscountTimer, error) {
	return read(ctx, s.units, func(uow repository.UnitOfWork) (*domain.DiscountTimer, error) {
		return uow.DiscountTimers().Get(ctx)
	})
}

// Update replaces title and end time. No history is kept
func (s *discountTimerService) Update(ctx context.Context, form viewmodel.DiscountTimerForm) (*domain.DiscountTimer, error) {
	timer := viewmodel.ApplyDiscountTimer(form)

	err := repository.WithinUnit(ctx, s.units, func(uow repository.UnitOfWork) error {
		return uow.DiscountTimers().Save(ctx, timer)
	})
	if err != nil {
		return nil, err
	}

	return timer, nil
}
