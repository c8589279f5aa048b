package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/weavego/internal/ctxlog"
	"github.com/vk/weavego/internal/fault"
)

// MaxChain is the number of chained reasons tolerated before an update is
// considered a loop.
const MaxChain = 10

// State is the scheduler state.
type State int

const (
	Idle State = iota
	Scheduled
	Committing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// ErrStopped rejects settle waiters of a stopped scheduler.
var ErrStopped = errors.New("scheduler stopped")

// LoopError reports an update chain that exceeded MaxChain.
type LoopError struct {
	Chain []Reason
}

// Error implements the error interface.
func (e *LoopError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, r := range e.Chain {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%v: chain exceeded %d entries: %s", fault.ErrUpdateLoop, MaxChain, strings.Join(parts, " -> "))
}

// Unwrap exposes fault.ErrUpdateLoop to errors.Is.
func (e *LoopError) Unwrap() error {
	return fault.ErrUpdateLoop
}

// Scheduler coalesces dispatches into frame commits. It is not safe for
// concurrent use; all calls must happen on the frame source's thread.
type Scheduler struct {
	ctx     context.Context
	frames  FrameSource
	onError func(error)

	state     State
	chain     []Reason
	listeners []Listener
	waiters   []*Settle
	cancel    func()
	abort     context.CancelFunc
	err       error
	stopped   bool
}

// New creates an idle scheduler. ctx carries the logger and is handed to
// listeners. onError receives every error that escapes a commit; it may be
// nil.
func New(ctx context.Context, frames FrameSource, onError func(error)) *Scheduler {
	return &Scheduler{
		ctx:     ctx,
		frames:  frames,
		onError: onError,
	}
}

// Listen registers a listener that runs on every commit, in registration
// order.
func (s *Scheduler) Listen(l Listener) {
	s.listeners = append(s.listeners, l)
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Chain returns a copy of the current update chain.
func (s *Scheduler) Chain() []Reason {
	return append([]Reason(nil), s.chain...)
}

// Err returns the error recorded by the last failed commit.
func (s *Scheduler) Err() error {
	return s.err
}

// Dispatch requests an update for reason. It returns a *LoopError when the
// reason pushes the chain past MaxChain.
func (s *Scheduler) Dispatch(reason Reason) error {
	if s.stopped {
		return nil
	}
	logger := ctxlog.FromContext(s.ctx)

	switch s.state {
	case Idle:
		s.err = nil
		s.chain = append(s.chain, reason)
		s.state = Scheduled
		s.request()
		logger.Debug("Update scheduled.", "reason", reason.String())
	case Scheduled:
		logger.Debug("Update coalesced into pending frame.", "reason", reason.String())
	case Committing:
		s.chain = append(s.chain, reason)
		logger.Debug("Update chained during commit.", "reason", reason.String(), "chain", len(s.chain))
		if len(s.chain) > MaxChain {
			err := &LoopError{Chain: s.Chain()}
			s.fail(err)
			return err
		}
	}
	return nil
}

// Settled returns a future that resolves when the scheduler is next Idle,
// or rejects when the pending work fails. An idle scheduler returns a
// resolved future.
func (s *Scheduler) Settled() *Settle {
	f := newSettle()
	if s.stopped {
		f.finish(ErrStopped)
		return f
	}
	if s.state == Idle {
		f.finish(nil)
		return f
	}
	s.waiters = append(s.waiters, f)
	return f
}

// Stop cancels the pending frame and rejects waiters. Later dispatches are
// ignored.
func (s *Scheduler) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.abort != nil {
		s.abort()
	}
	s.cancelFrame()
	s.reset()
	s.release(ErrStopped)
}

func (s *Scheduler) request() {
	s.cancel = s.frames.Request(s.commit)
}

func (s *Scheduler) cancelFrame() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) commit() {
	s.cancel = nil
	if s.stopped || s.state != Scheduled {
		return
	}
	logger := ctxlog.FromContext(s.ctx)

	s.state = Committing
	before := len(s.chain)
	logger.Debug("Committing update.", "chain", before)

	// ctx is cancelled as soon as the commit fails.
	ctx, abort := context.WithCancel(s.ctx)
	s.abort = abort
	defer func() {
		abort()
		s.abort = nil
	}()

	for _, l := range s.listeners {
		err := l(ctx)
		if s.state != Committing {
			// A dispatch inside the listener already failed the commit.
			return
		}
		if err != nil {
			s.fail(err)
			return
		}
	}

	if len(s.chain) > before {
		s.state = Scheduled
		s.request()
		return
	}

	s.reset()
	logger.Debug("Update settled.")
	s.release(nil)
}

// fail aborts the current work: no frame stays pending, the state returns
// to Idle and the waiters see err.
func (s *Scheduler) fail(err error) {
	if s.abort != nil {
		s.abort()
	}
	s.cancelFrame()
	s.reset()
	s.err = err
	ctxlog.FromContext(s.ctx).Debug("Update failed.", "error", err)
	s.release(err)
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Scheduler) reset() {
	s.state = Idle
	s.chain = nil
}

func (s *Scheduler) release(err error) {
	waiters := s.waiters
	s.waiters = nil
	for _, w := range waiters {
		w.finish(err)
	}
}
