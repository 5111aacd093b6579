package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestCache(t *testing.T, ttl time.Duration) (*ReviewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect(context.Background(), "redis://"+mr.Addr(), ttl)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func sampleReviews() []models.Review {
	created := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	return []models.Review{
		{ID: 2, Name: "Bob", Text: "Fine", Rating: 4, Approved: true, CreatedAt: created.Add(time.Hour)},
		{ID: 1, Name: "Ann", Text: "Great", Rating: 5, Approved: true, CreatedAt: created},
	}
}

func TestUnavailableRedisIsAMiss(t *testing.T) {
	c := NewReviewCache(unreachableClient(t), time.Minute)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	if ok || gen != -1 {
		t.Fatalf("expected miss with unknown generation, got ok=%v gen=%d", ok, gen)
	}
	c.Set(ctx, 0, []models.Review{{ID: 1, Name: "Ann", Approved: true}})
	c.Invalidate(ctx)
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "not-a-url", time.Minute); err == nil {
		t.Fatalf("expected error for invalid url")
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	if ok {
		t.Fatalf("empty cache should miss")
	}
	want := sampleReviews()
	c.Set(ctx, gen, want)

	got, _, ok := c.Get(ctx)
	if !ok {
		t.Fatalf("expected hit after Set")
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d reviews, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Name != want[i].Name || got[i].Rating != want[i].Rating || !got[i].Approved {
			t.Fatalf("position %d: got %+v want %+v", i, got[i], want[i])
		}
		if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Fatalf("position %d: created_at %v want %v", i, got[i].CreatedAt, want[i].CreatedAt)
		}
	}
	if ttl := mr.TTL(approvedKey); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}
}

func TestInvalidateClearsEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, gen, _ := c.Get(ctx)
	c.Set(ctx, gen, sampleReviews())
	c.Invalidate(ctx)

	if mr.Exists(approvedKey) {
		t.Fatalf("entry should be deleted")
	}
	if _, _, ok := c.Get(ctx); ok {
		t.Fatalf("expected miss after Invalidate")
	}
}

func TestEntryExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, gen, _ := c.Get(ctx)
	c.Set(ctx, gen, sampleReviews())
	mr.FastForward(2 * time.Minute)

	if _, _, ok := c.Get(ctx); ok {
		t.Fatalf("expected miss after ttl")
	}
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	if err := mr.Set(approvedKey, "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	_, gen, ok := c.Get(context.Background())
	if ok {
		t.Fatalf("corrupt entry must be a miss")
	}
	if gen != 0 {
		t.Fatalf("expected generation 0, got %d", gen)
	}
}

func TestFillAfterInvalidateIsDropped(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, gen, ok := c.Get(ctx)
	if ok {
		t.Fatalf("empty cache should miss")
	}
	// An approval lands between the listing read and the fill.
	c.Invalidate(ctx)
	c.Set(ctx, gen, sampleReviews()[:1])

	if mr.Exists(approvedKey) {
		t.Fatalf("stale listing must not be cached")
	}

	_, fresh, _ := c.Get(ctx)
	if fresh != gen+1 {
		t.Fatalf("expected generation %d, got %d", gen+1, fresh)
	}
	c.Set(ctx, fresh, sampleReviews())
	got, _, ok := c.Get(ctx)
	if !ok || len(got) != 2 {
		t.Fatalf("fill at the current generation should be stored, got ok=%v %d rows", ok, len(got))
	}
}
