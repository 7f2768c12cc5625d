package usecase

import (
	"context"

	"guardpost/internal/modules/staff/application/port"
	"guardpost/internal/modules/staff/domain"
)

// ListInvalidator drops cached pages of a dashboard resource so the next
// fetch hits the upstream.
type ListInvalidator interface {
	Invalidate(resource string)
}

// ReviewUseCase submits operative ratings. A successful review invalidates
// the cached staff pages so the refreshed list shows the new rating.
type ReviewUseCase struct {
	api   port.StaffAPI
	lists ListInvalidator
}

func NewReviewUseCase(api port.StaffAPI, lists ListInvalidator) *ReviewUseCase {
	return &ReviewUseCase{api: api, lists: lists}
}

func (uc *ReviewUseCase) AddReview(ctx context.Context, token string, review domain.Review) (string, error) {
	if err := review.Validate(); err != nil {
		return "", err
	}
	message, err := uc.api.AddReview(ctx, token, review)
	if err != nil {
		return "", err
	}
	if uc.lists != nil {
		uc.lists.Invalidate("staff")
	}
	return message, nil
}
