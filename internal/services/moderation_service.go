package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/repository"
)

// ModerationService applies approve/reject decisions. A review moves from
// pending to approved, or from pending to deleted; every other combination
// is reported as a no-op outcome.
type ModerationService struct {
	store ReviewStore
	cache ApprovedCache
}

func NewModerationService(store ReviewStore, cache ApprovedCache) *ModerationService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &ModerationService{store: store, cache: cache}
}

func (s *ModerationService) Decide(ctx context.Context, action moderation.Action) (moderation.Outcome, error) {
	var (
		changed bool
		err     error
	)
	switch action.Kind {
	case moderation.KindApprove:
		changed, err = s.store.ApprovePending(ctx, action.ReviewID)
	case moderation.KindReject:
		changed, err = s.store.DeletePending(ctx, action.ReviewID)
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", moderation.ErrMalformedAction, action.Kind)
	}
	if err != nil {
		return 0, &StoreError{Op: string(action.Kind) + " review", Err: err}
	}

	if changed {
		if action.Kind == moderation.KindApprove {
			s.cache.Invalidate(ctx)
			slog.Info("review approved", "review_id", action.ReviewID)
			return moderation.OutcomeApproved, nil
		}
		slog.Info("review rejected", "review_id", action.ReviewID)
		return moderation.OutcomeRejected, nil
	}

	return s.resolved(ctx, action)
}

// resolved explains why a decision did not change anything.
func (s *ModerationService) resolved(ctx context.Context, action moderation.Action) (moderation.Outcome, error) {
	review, err := s.store.FindByID(ctx, action.ReviewID)
	if errors.Is(err, repository.ErrReviewNotFound) {
		slog.Warn("moderation decision for missing review", "review_id", action.ReviewID, "action", string(action.Kind))
		return moderation.OutcomeNotFound, nil
	}
	if err != nil {
		return 0, &StoreError{Op: "find review", Err: err}
	}
	if review.Approved {
		slog.Warn("moderation decision for approved review", "review_id", action.ReviewID, "action", string(action.Kind))
		return moderation.OutcomeAlreadyApproved, nil
	}
	return 0, &StoreError{
		Op:  string(action.Kind) + " review",
		Err: fmt.Errorf("review %d is still pending after %s", action.ReviewID, action.Kind),
	}
}
