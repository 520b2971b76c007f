package usecase

import (
	"context"

	"github.com/partyvault/partyvault/internal/domain"
)

// ActivityUseCase exposes the vault activity log.
type ActivityUseCase struct {
	activityRepo ActivityRepository
}

// NewActivityUseCase creates a new ActivityUseCase.
func NewActivityUseCase(activityRepo ActivityRepository) *ActivityUseCase {
	return &ActivityUseCase{activityRepo: activityRepo}
}

// List returns activity logs matching the filter, newest first.
func (uc *ActivityUseCase) List(ctx context.Context, filter domain.ActivityFilter) ([]*domain.ActivityLog, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.activityRepo.List(ctx, filter)
}
