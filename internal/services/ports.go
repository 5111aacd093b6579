package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
)

// ReviewStore is the persistence the services need. It is satisfied by
// repository.ReviewRepository.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	CreateBatch(ctx context.Context, reviews []models.Review) error
	ListApproved(ctx context.Context) ([]models.Review, error)
	FindByID(ctx context.Context, id uint) (*models.Review, error)
	ApprovePending(ctx context.Context, id uint) (bool, error)
	DeletePending(ctx context.Context, id uint) (bool, error)
}

// Notifier delivers messages to the moderation chat.
type Notifier interface {
	NotifyForm(ctx context.Context, form *dto.FormRequest) error
	NotifyReview(ctx context.Context, review *models.Review) error
}

// ApprovedCache holds the public review listing. Implementations must treat
// their own failures as misses.
//
// Get reports the cache generation on a miss. Set stores the listing only if
// no Invalidate has happened since that generation was read, so a listing
// read before an approval can never be cached after it. A negative
// generation means the cache could not tell, and Set must skip the fill.
type ApprovedCache interface {
	Get(ctx context.Context) (reviews []models.Review, gen int64, hit bool)
	Set(ctx context.Context, gen int64, reviews []models.Review)
	Invalidate(ctx context.Context)
}

// NoopCache disables listing caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context) ([]models.Review, int64, bool) { return nil, -1, false }
func (NoopCache) Set(context.Context, int64, []models.Review)         {}
func (NoopCache) Invalidate(context.Context)                          {}
