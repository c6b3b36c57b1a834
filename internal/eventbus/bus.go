// ABOUTME: MPSC envelope queue with unique-event deduplication and a terminal
// ABOUTME: waker, per spec.md §4.3; the single receiver is owned by the display loop.

package eventbus

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/colinmarc/sp/internal/keymap"
)

// Event is the payload carried by an envelope. Concrete event types are
// declared below; any comparable or struct type may be sent.
type Event any

// Render requests a redraw without recomputing layout.
type Render struct{}

// Refresh requests a full layout recomputation followed by a redraw.
type Refresh struct{}

// Loaded announces that file index FileIndex has finished loading.
type Loaded struct{ FileIndex int }

// Appending announces that file index FileIndex has new bytes available.
type Appending struct{ FileIndex int }

// Reloading announces that file index FileIndex is being reloaded from
// scratch (its watcher detected truncation).
type Reloading struct{ FileIndex int }

// KeyInput carries one parsed terminal key press.
type KeyInput struct{ Key keymap.Key }

// Resize announces a terminal size change (SIGWINCH).
type Resize struct{}

// SearchFirstMatch announces that a search on file index FileIndex has
// found its first match (current_match became Some for the first time).
type SearchFirstMatch struct{ FileIndex int }

// SearchFinished announces that a search's sweep over file index
// FileIndex has completed.
type SearchFinished struct{ FileIndex int }

// RefreshOverlay announces that a subprocess exited and its info line
// (exit code or "killed!") should be redrawn.
type RefreshOverlay struct{ FileIndex int }

// envelope is either a Normal(event) or a Unique(event, flag) entry, per
// spec.md §4.3's Envelope sum type.
type envelope struct {
	event Event
	flag  *atomic.Bool // non-nil only for Unique envelopes
}

// EventBus is a multi-producer, single-consumer event queue. Senders are
// freely shareable across goroutines; Get must only be called from the
// single owning receiver (the display loop).
type EventBus struct {
	mu    sync.Mutex
	queue []envelope
	wake  chan struct{}
}

// New creates an empty EventBus.
func New() *EventBus {
	return &EventBus{wake: make(chan struct{}, 1)}
}

// Send enqueues event unconditionally and wakes the receiver.
func (b *EventBus) Send(event Event) {
	b.mu.Lock()
	b.queue = append(b.queue, envelope{event: event})
	b.mu.Unlock()
	b.notify()
}

// SendUnique enqueues event only if flag transitions false->true,
// guaranteeing at most one in-flight copy of a deduplicated event kind
// (Render, Refresh, Loaded(i), Appending(i), Reloading(i)) at a time.
// The receiver resets flag to false when it dequeues the envelope.
func (b *EventBus) SendUnique(event Event, flag *atomic.Bool) {
	if !flag.CompareAndSwap(false, true) {
		return
	}
	b.mu.Lock()
	b.queue = append(b.queue, envelope{event: event, flag: flag})
	b.mu.Unlock()
	b.notify()
}

// DispatchKey is an onKey callback suitable for passing to
// eventbus.NewStdinBuffer: it wires raw terminal input into the bus as
// the "terminal waker" integration spec.md §4.3 describes, so Get's
// timeout-bounded wait and the envelope queue share one wake channel.
func (b *EventBus) DispatchKey(k keymap.Key) {
	b.Send(KeyInput{Key: k})
}

func (b *EventBus) notify() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *EventBus) dequeue() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil, false
	}
	env := b.queue[0]
	b.queue = b.queue[1:]
	if env.flag != nil {
		env.flag.Store(false)
	}
	return env.event, true
}

// Get drains one envelope if the queue is non-empty; otherwise it waits
// on the terminal waker up to timeout. A wake-up that turns out not to
// have left anything in the queue (a losing race with another drain,
// or a Resize/Wake notification with nothing queued yet) re-enters the
// wait against the remaining deadline rather than returning, matching
// spec.md §4.3's "continuation of the wait without returning".
func (b *EventBus) Get(timeout time.Duration) (Event, bool) {
	deadline := time.Now().Add(timeout)
	for {
		if event, ok := b.dequeue(); ok {
			return event, true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-b.wake:
			timer.Stop()
			continue
		case <-timer.C:
			return nil, false
		}
	}
}
