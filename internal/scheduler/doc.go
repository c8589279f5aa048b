// Package scheduler coalesces change notifications of one component into
// discrete refresh passes.
//
// # Why Scheduler Exists
//
// A single user action usually writes several data properties. Rebuilding
// after every write would repeat work and expose half-applied state, so the
// scheduler defers the refresh to the next frame boundary and runs it once
// for all writes that happened before it.
//
// # How It Works
//
// The scheduler moves through three states:
//
//  1. Idle: the first Dispatch records its reason in the update chain,
//     moves to Scheduled and requests a frame.
//  2. Scheduled: further dispatches are coalesced into the pending frame.
//  3. Committing: the frame fired and listeners run. A dispatch here means
//     the refresh itself caused a change; the reason is recorded and
//     another frame follows once the commit ends.
//
// When a commit ends without new reasons the chain is reset, the state
// returns to Idle and every settle waiter is released.
//
// # Loop Detection
//
// A refresh that keeps re-triggering itself grows the chain by one entry
// per frame. Once the chain holds more than MaxChain entries the scheduler
// fails with a *LoopError carrying the whole chain, cancels any pending
// frame and rejects the waiters.
//
// # Frames
//
// Frame boundaries come from a FrameSource. Manual fires frames only when
// Flush is called, which keeps tests deterministic. Loop runs frames on a
// dedicated goroutine at a fixed interval and serializes every other task
// through Do, giving components the single logical thread they assume.
package scheduler
