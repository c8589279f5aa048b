package scheduler

import "context"

// FrameSource provides frame boundaries.
//
// Request schedules fn for the next frame and returns a function that
// cancels it. Cancelling an already fired or cancelled request is a no-op.
// Do runs fn on the frame source's logical thread and returns after it
// completed.
type FrameSource interface {
	Request(fn func()) (cancel func())
	Do(fn func())
}

// Listener runs once per committed frame.
type Listener func(ctx context.Context) error

// Reason describes why an update was requested.
type Reason struct {
	Component string
	Property  string
}

// String renders the reason for logs and errors.
func (r Reason) String() string {
	if r.Property == "" {
		return r.Component
	}
	return r.Component + "." + r.Property
}
