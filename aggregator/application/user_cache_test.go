package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"posts-gateway/aggregator/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCache_ConcurrentResolveFetchesOnce(t *testing.T) {
	var fetches atomic.Int32
	release := make(chan struct{})
	cache := NewUserCache(func(ctx context.Context, userID int64) domain.Result[domain.User] {
		fetches.Add(1)
		<-release
		return domain.Ok(domain.User{ID: userID, Name: "Ann", Email: "ann@example.com"})
	})

	const n = 50
	handles := make([]*UserHandle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles[i] = cache.Resolve(context.Background(), 10)
		}()
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
		assert.False(t, h.Ready())
	}

	close(release)
	for _, h := range handles {
		res := h.Wait(context.Background())
		require.True(t, res.OK())
		assert.Equal(t, "Ann", res.Value.Name)
	}
	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestUserCache_FailureIsCachedForTheRequest(t *testing.T) {
	var fetches atomic.Int32
	cache := NewUserCache(func(ctx context.Context, userID int64) domain.Result[domain.User] {
		fetches.Add(1)
		return domain.Unavailable[domain.User](errors.New("users down"))
	})

	first := cache.Resolve(context.Background(), 20).Wait(context.Background())
	second := cache.Resolve(context.Background(), 20).Wait(context.Background())

	assert.Equal(t, domain.StatusUnavailable, first.Status)
	assert.Equal(t, domain.StatusUnavailable, second.Status)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestUserCache_DistinctIDsFetchIndependently(t *testing.T) {
	var fetches atomic.Int32
	cache := NewUserCache(func(ctx context.Context, userID int64) domain.Result[domain.User] {
		fetches.Add(1)
		return domain.Ok(domain.User{ID: userID})
	})

	a := cache.Resolve(context.Background(), 1).Wait(context.Background())
	b := cache.Resolve(context.Background(), 2).Wait(context.Background())

	assert.Equal(t, int64(1), a.Value.ID)
	assert.Equal(t, int64(2), b.Value.ID)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestUserCache_AbsentAuthorShortCircuits(t *testing.T) {
	cache := NewUserCache(func(ctx context.Context, userID int64) domain.Result[domain.User] {
		t.Fatalf("fetch must not be called for user %d", userID)
		return domain.Result[domain.User]{}
	})

	for _, id := range []int64{0, -3} {
		h := cache.Resolve(context.Background(), id)
		assert.True(t, h.Ready())

		res := h.Wait(context.Background())
		assert.False(t, res.OK())
		assert.Equal(t, domain.UnknownUser, res.Value)
	}
	assert.Equal(t, 0, cache.Len())
}

func TestUserCache_WaitHonorsCallerContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	cache := NewUserCache(func(ctx context.Context, userID int64) domain.Result[domain.User] {
		<-release
		return domain.Ok(domain.User{ID: userID})
	})

	h := cache.Resolve(context.Background(), 5)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := h.Wait(ctx)

	assert.Equal(t, domain.StatusUnavailable, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.False(t, h.Ready())
}
