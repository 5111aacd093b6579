package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"gorm.io/gorm"
)

var ErrReviewNotFound = errors.New("review not found")

const seedBatchSize = 100

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review and fills in its ID and CreatedAt.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("ReviewRepository.Create: %w", err)
	}
	return nil
}

// CreateBatch inserts all reviews in a single transaction: either every row
// is written or none is.
func (r *ReviewRepository) CreateBatch(ctx context.Context, reviews []models.Review) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&reviews, seedBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("ReviewRepository.CreateBatch: %w", err)
	}
	return nil
}

// ListApproved returns approved reviews, newest first.
func (r *ReviewRepository) ListApproved(ctx context.Context) ([]models.Review, error) {
	reviews := make([]models.Review, 0)
	err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("ReviewRepository.ListApproved: %w", err)
	}
	return reviews, nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ReviewRepository.FindByID: %w", err)
	}
	return &review, nil
}

// ApprovePending flips a pending review to approved. It reports false when no
// pending row with that id exists.
func (r *ReviewRepository) ApprovePending(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND approved = ?", id, false).
		Update("approved", true)
	if result.Error != nil {
		return false, fmt.Errorf("ReviewRepository.ApprovePending: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeletePending removes a pending review. Approved reviews are never deleted.
func (r *ReviewRepository) DeletePending(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND approved = ?", id, false).
		Delete(&models.Review{})
	if result.Error != nil {
		return false, fmt.Errorf("ReviewRepository.DeletePending: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
