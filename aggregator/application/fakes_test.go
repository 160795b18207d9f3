package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"posts-gateway/aggregator/domain"

	"github.com/stretchr/testify/mock"
)

// sleepCtx espera d ou até o ctx encerrar, o que vier primeiro.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type fakePosts struct {
	posts []domain.Post
	err   error
	delay time.Duration

	deleteStatus int
	deleteErr    error
	deleteCalls  atomic.Int32
}

func (f *fakePosts) ListPosts(ctx context.Context) ([]domain.Post, error) {
	if err := sleepCtx(ctx, f.delay); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.posts, nil
}

func (f *fakePosts) DeletePost(ctx context.Context, postID int64) (int, error) {
	f.deleteCalls.Add(1)
	if err := sleepCtx(ctx, f.delay); err != nil {
		return 0, err
	}
	return f.deleteStatus, f.deleteErr
}

type fakeComments struct {
	byPost map[int64][]domain.Comment
	errs   map[int64]error
	delays map[int64]time.Duration

	mu    sync.Mutex
	calls []int64
}

func (f *fakeComments) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, postID)
	f.mu.Unlock()

	if err := sleepCtx(ctx, f.delays[postID]); err != nil {
		return nil, err
	}
	if err := f.errs[postID]; err != nil {
		return nil, err
	}
	return f.byPost[postID], nil
}

type mockUsers struct {
	mock.Mock
	delay time.Duration
}

func (m *mockUsers) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	args := m.Called(ctx, userID)
	if err := sleepCtx(ctx, m.delay); err != nil {
		return domain.User{}, err
	}
	return args.Get(0).(domain.User), args.Error(1)
}

type recordingStats struct {
	mu     sync.Mutex
	events []domain.CallEvent
}

func (s *recordingStats) Record(_ context.Context, ev domain.CallEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingStats) Events() []domain.CallEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CallEvent(nil), s.events...)
}

type fullPool struct{}

func (fullPool) Acquire(ctx context.Context) (func(), bool) {
	<-ctx.Done()
	return nil, false
}

type failingThrottle struct{ err error }

func (t failingThrottle) Wait(context.Context, string) error { return t.err }
