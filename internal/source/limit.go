package source

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// ErrBusy is returned when every fetch slot stays occupied for the whole
// wait. Clients should retry after a short delay.
var ErrBusy = errors.New("too many concurrent record fetches, please try again later")

const (
	DefaultMaxFetches = 2
	DefaultFetchWait  = 5 * time.Second
)

// Limited caps concurrent fetches against Next. Many sessions pressing
// Refresh at once queue for a slot instead of each hitting the store.
type Limited struct {
	next    Source
	slots   chan struct{}
	maxWait time.Duration
}

// Limit wraps next so at most n fetches run at once. Callers wait up to
// maxWait for a slot before failing with ErrBusy.
func Limit(next Source, n int, maxWait time.Duration) *Limited {
	if n <= 0 {
		n = DefaultMaxFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultFetchWait
	}
	return &Limited{next: next, slots: make(chan struct{}, n), maxWait: maxWait}
}

// Records fetches from Next once a slot is free.
func (l *Limited) Records(ctx context.Context) ([]grid.Record, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return l.next.Records(ctx)
}

// Refresh is Records bypassing any cache behind the limiter.
func (l *Limited) Refresh(ctx context.Context) ([]grid.Record, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer l.release()
	return Fresh(ctx, l.next)
}

func (l *Limited) acquire(ctx context.Context) error {
	wait, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-wait.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
}

func (l *Limited) release() { <-l.slots }
