package repository

import "errors"

// ErrFeedStopped is returned by Feed.Next once Stop has been called or the
// subscription context is done.
var ErrFeedStopped = errors.New("feed stopped")

// Feed is a live query subscription. Every Next call yields the full current
// result set; the first call returns immediately with the initial snapshot and
// later calls block until the result changes. Stop releases the listener and
// must always be called.
type Feed[T any] interface {
	Next() (T, error)
	Stop()
}
