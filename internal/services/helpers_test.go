package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/database"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "reviews.db")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestRepo(t *testing.T) (*repository.ReviewRepository, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return repository.NewReviewRepository(db), db
}

func countReviews(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Review{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

type fakeNotifier struct {
	mu      sync.Mutex
	forms   []dto.FormRequest
	reviews []models.Review
	err     error
}

func (f *fakeNotifier) NotifyForm(_ context.Context, form *dto.FormRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.forms = append(f.forms, *form)
	return nil
}

func (f *fakeNotifier) NotifyReview(_ context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reviews = append(f.reviews, *review)
	return nil
}

type memoryCache struct {
	mu          sync.Mutex
	reviews     []models.Review
	cached      bool
	gen         int64
	hits        int
	invalidated int
	staleFills  int
}

func (c *memoryCache) Get(context.Context) ([]models.Review, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return nil, c.gen, false
	}
	c.hits++
	return c.reviews, c.gen, true
}

func (c *memoryCache) Set(_ context.Context, gen int64, reviews []models.Review) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.staleFills++
		return
	}
	c.reviews = reviews
	c.cached = true
}

func (c *memoryCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.reviews = nil
	c.cached = false
	c.invalidated++
}

// hookStore runs afterList once, right after the first ListApproved read.
type hookStore struct {
	ReviewStore
	afterList func()
}

func (s *hookStore) ListApproved(ctx context.Context) ([]models.Review, error) {
	reviews, err := s.ReviewStore.ListApproved(ctx)
	if s.afterList != nil {
		hook := s.afterList
		s.afterList = nil
		hook()
	}
	return reviews, err
}

// failingStore fails every call with err.
type failingStore struct {
	err error
}

func (s failingStore) Create(context.Context, *models.Review) error           { return s.err }
func (s failingStore) CreateBatch(context.Context, []models.Review) error     { return s.err }
func (s failingStore) ListApproved(context.Context) ([]models.Review, error)  { return nil, s.err }
func (s failingStore) FindByID(context.Context, uint) (*models.Review, error) { return nil, s.err }
func (s failingStore) ApprovePending(context.Context, uint) (bool, error)     { return false, s.err }
func (s failingStore) DeletePending(context.Context, uint) (bool, error)      { return false, s.err }

var errBoom = errors.New("boom")
