package scheduler

import (
	"context"
	"sync"
	"time"
)

// Manual is a FrameSource whose frames fire only on Flush. It runs tasks
// passed to Do inline, on the caller's goroutine.
type Manual struct {
	next    uint64
	pending []*frameRequest
}

type frameRequest struct {
	id        uint64
	fn        func()
	cancelled bool
}

// NewManual creates a manual frame source.
func NewManual() *Manual {
	return &Manual{}
}

// Request implements FrameSource.
func (m *Manual) Request(fn func()) func() {
	m.next++
	r := &frameRequest{id: m.next, fn: fn}
	m.pending = append(m.pending, r)
	return func() { r.cancelled = true }
}

// Do implements FrameSource.
func (m *Manual) Do(fn func()) {
	fn()
}

// Pending returns the number of frame requests waiting to fire.
func (m *Manual) Pending() int {
	n := 0
	for _, r := range m.pending {
		if !r.cancelled {
			n++
		}
	}
	return n
}

// Flush fires frames until none are pending, including frames requested by
// the frames being fired. It returns the number of frames fired.
func (m *Manual) Flush() int {
	fired := 0
	for len(m.pending) > 0 {
		batch := m.pending
		m.pending = nil
		for _, r := range batch {
			if r.cancelled {
				continue
			}
			r.cancelled = true
			fired++
			r.fn()
		}
	}
	return fired
}

// Step fires only the frames pending at call time.
func (m *Manual) Step() int {
	batch := m.pending
	m.pending = nil
	fired := 0
	for _, r := range batch {
		if r.cancelled {
			continue
		}
		r.cancelled = true
		fired++
		r.fn()
	}
	return fired
}

// Loop is a FrameSource backed by a goroutine that fires pending frames
// every interval. Every task given to Do runs on that goroutine too.
type Loop struct {
	interval time.Duration
	tasks    chan func()
	manual   *Manual
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop frame source. Call Run to start it.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Loop{
		interval: interval,
		tasks:    make(chan func()),
		manual:   NewManual(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run processes tasks and frames until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stop:
			return
		case task := <-l.tasks:
			task()
		case <-ticker.C:
			l.manual.Step()
		}
	}
}

// Start runs the loop in a new goroutine.
func (l *Loop) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Stop ends the loop and waits for it to exit.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

// Request implements FrameSource. It must be called on the loop goroutine.
func (l *Loop) Request(fn func()) func() {
	return l.manual.Request(fn)
}

// Do implements FrameSource. It hands fn to the loop goroutine and waits
// for it, so it must not be called from that goroutine. After the loop
// stopped Do returns without running fn.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
		<-finished
	case <-l.done:
	}
}
