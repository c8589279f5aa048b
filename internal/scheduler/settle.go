package scheduler

import (
	"context"
	"sync"
)

// Settle is a future that resolves or rejects exactly once.
type Settle struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newSettle() *Settle {
	return &Settle{done: make(chan struct{})}
}

// Resolved returns a future that has already settled with err.
func Resolved(err error) *Settle {
	f := newSettle()
	f.finish(err)
	return f
}

func (f *Settle) finish(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed when the future settles.
func (f *Settle) Done() <-chan struct{} {
	return f.done
}

// Err returns the rejection error. It is only meaningful after Done is
// closed.
func (f *Settle) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future settles or ctx is done.
func (f *Settle) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
