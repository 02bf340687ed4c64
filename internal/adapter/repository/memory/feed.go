package memory

import (
	"context"
	"reflect"
	"sync"

	"campusmarket/internal/domain/repository"
)

type feed[T any] struct {
	store  *Store
	ctx    context.Context
	cancel context.CancelFunc
	query  func(*Store) T

	mu      sync.Mutex
	started bool
	last    T
	wait    <-chan struct{}
}

func newFeed[T any](ctx context.Context, store *Store, query func(*Store) T) *feed[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &feed[T]{
		store:  store,
		ctx:    ctx,
		cancel: cancel,
		query:  query,
	}
}

func (f *feed[T]) snapshot() (T, <-chan struct{}) {
	f.store.mu.RLock()
	defer f.store.mu.RUnlock()
	return f.query(f.store), f.store.changed
}

func (f *feed[T]) Next() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	if f.ctx.Err() != nil {
		return zero, repository.ErrFeedStopped
	}

	if !f.started {
		f.started = true
		f.last, f.wait = f.snapshot()
		return f.last, nil
	}

	for {
		select {
		case <-f.ctx.Done():
			return zero, repository.ErrFeedStopped
		case <-f.wait:
		}

		current, wait := f.snapshot()
		f.wait = wait
		if reflect.DeepEqual(current, f.last) {
			continue
		}
		f.last = current
		return current, nil
	}
}

func (f *feed[T]) Stop() {
	f.cancel()
}
