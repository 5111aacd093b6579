package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"github.com/getsentry/sentry-go"
)

const (
	msgReviewFieldsRequired = "all fields are required"
	msgInvalidSeedPayload   = "invalid data format"
)

// SubmitOutcome reports both steps of a review submission. The review is
// persisted even when the moderation prompt could not be delivered.
type SubmitOutcome struct {
	Review    *models.Review
	Notified  bool
	NotifyErr error
}

type ReviewService struct {
	store    ReviewStore
	notifier Notifier
	cache    ApprovedCache
}

func NewReviewService(store ReviewStore, notifier Notifier, cache ApprovedCache) *ReviewService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &ReviewService{
		store:    store,
		notifier: notifier,
		cache:    cache,
	}
}

// Submit stores a pending review and sends the moderation prompt. Delivery is
// best-effort: a failed prompt is logged and returned in the outcome, not as
// an error.
func (s *ReviewService) Submit(ctx context.Context, req *dto.CreateReviewRequest) (*SubmitOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Message: msgReviewFieldsRequired}
	}

	review := &models.Review{
		Name:   req.Name,
		Text:   req.Text,
		Rating: req.Rating,
	}
	if err := s.store.Create(ctx, review); err != nil {
		return nil, &StoreError{Op: "create review", Err: err}
	}

	outcome := &SubmitOutcome{Review: review}
	if s.notifier == nil {
		return outcome, nil
	}

	if err := s.notifier.NotifyReview(ctx, review); err != nil {
		nerr := &NotificationError{Op: "moderation prompt", Err: err}
		slog.Error("review notification failed", "review_id", review.ID, "action", "notify_review", "error", nerr.Error())
		sentry.CaptureException(nerr)
		outcome.NotifyErr = nerr
		return outcome, nil
	}
	outcome.Notified = true
	return outcome, nil
}

// ListApproved returns the public listing, newest first.
func (s *ReviewService) ListApproved(ctx context.Context) ([]models.Review, error) {
	cached, gen, ok := s.cache.Get(ctx)
	if ok {
		return cached, nil
	}

	reviews, err := s.store.ListApproved(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list approved reviews", Err: err}
	}
	s.cache.Set(ctx, gen, reviews)
	return reviews, nil
}

// Seed inserts every record as given in one transaction and returns the
// number of rows written.
func (s *ReviewService) Seed(ctx context.Context, reqs []dto.SeedReviewRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, &ValidationError{Message: msgInvalidSeedPayload}
	}

	reviews := make([]models.Review, len(reqs))
	for i, r := range reqs {
		reviews[i] = models.Review{
			Name:     r.Name,
			Text:     r.Text,
			Rating:   r.Rating,
			Approved: bool(r.Approved),
		}
	}

	if err := s.store.CreateBatch(ctx, reviews); err != nil {
		return 0, &StoreError{Op: "seed reviews", Err: err}
	}
	s.cache.Invalidate(ctx)

	slog.Info("reviews seeded", "inserted", len(reviews))
	return len(reviews), nil
}
