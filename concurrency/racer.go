// Package concurrency provides cooperative-cancellation helpers used to
// parallelize bucket scans and bulk hashing without tearing down goroutines
// that are already mid-flight.
package concurrency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Racer runs a set of candidate-producing functions concurrently and
// returns the first non-zero match. It is the Go equivalent of the
// "shared found flag" pattern used to stop a parallel bucket scan as
// soon as one worker locates the record being looked up: every worker
// checks Found() before doing more work, and the first call to report
// a hit wins, but workers that are already mid-comparison are allowed
// to finish rather than being forcibly killed.
type Racer[T any] struct {
	result     chan T
	wg         *errgroup.Group
	waitDone   chan struct{}
	resultOnce sync.Once
	found      atomic.Bool
}

// NewRacer creates a Racer bounded by concurrency (<=0 means unbounded).
func NewRacer[T any](ctx context.Context, concurrency int) (*Racer[T], context.Context) {
	r := &Racer[T]{
		result:   make(chan T, 1),
		waitDone: make(chan struct{}),
	}
	var egCtx context.Context
	r.wg, egCtx = errgroup.WithContext(ctx)
	if concurrency > 0 {
		r.wg.SetLimit(concurrency)
	}
	return r, egCtx
}

// Found reports whether a worker has already reported a match. Workers
// should consult this between scan steps to stop doing useless work
// once the race is decided.
func (r *Racer[T]) Found() bool {
	return r.found.Load()
}

var errRaceWon = errors.New("racer: match already reported")

// Go spawns a worker. f should return a zero T and nil error when it
// found nothing, or a non-nil match plus a sentinel `ok=true` to report
// a hit. Once a worker reports ok, the errgroup is unwound for every
// other worker still running.
func (r *Racer[T]) Go(f func() (match T, ok bool, err error)) {
	if r.found.Load() {
		return
	}
	r.wg.Go(func() error {
		match, ok, err := f()
		if err != nil {
			return err
		}
		if ok {
			return r.report(match)
		}
		return nil
	})
}

func (r *Racer[T]) report(match T) error {
	r.found.Store(true)
	r.resultOnce.Do(func() {
		r.result <- match
		close(r.result)
	})
	return errRaceWon
}

// Wait blocks until either a match is reported or every worker has
// finished with no match. err is non-nil only when a worker returned a
// real (non-sentinel) error.
func (r *Racer[T]) Wait() (match T, ok bool, err error) {
	go func() {
		werr := r.wg.Wait()
		if werr != nil && !errors.Is(werr, errRaceWon) {
			err = werr
		}
		close(r.waitDone)
	}()

	select {
	case match = <-r.result:
		return match, true, nil
	case <-r.waitDone:
		return match, false, err
	}
}
