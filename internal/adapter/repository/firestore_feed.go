package repository

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusmarket/internal/domain/repository"
	"campusmarket/pkg/errors"
)

// snapshotFeed adapts a Firestore snapshot listener to repository.Feed.
// Stop only cancels the listener context, so it is safe to call while another
// goroutine is blocked in Next.
type snapshotFeed[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	iter   *firestore.QuerySnapshotIterator
	decode func(docs []*firestore.DocumentSnapshot) (T, error)

	stopOnce sync.Once
	iterOnce sync.Once
}

func newSnapshotFeed[T any](ctx context.Context, query firestore.Query, decode func([]*firestore.DocumentSnapshot) (T, error)) *snapshotFeed[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &snapshotFeed[T]{
		ctx:    ctx,
		cancel: cancel,
		iter:   query.Snapshots(ctx),
		decode: decode,
	}
}

func (f *snapshotFeed[T]) Next() (T, error) {
	var zero T

	snap, err := f.iter.Next()
	if err != nil {
		f.release()
		if f.ctx.Err() != nil || err == iterator.Done || status.Code(err) == codes.Canceled {
			return zero, repository.ErrFeedStopped
		}
		return zero, errors.Internal("Live query failed", err)
	}

	docs, err := snap.Documents.GetAll()
	if err != nil {
		return zero, errors.Internal("Failed to read live query snapshot", err)
	}
	return f.decode(docs)
}

func (f *snapshotFeed[T]) Stop() {
	f.stopOnce.Do(f.cancel)
}

func (f *snapshotFeed[T]) release() {
	f.iterOnce.Do(f.iter.Stop)
}
