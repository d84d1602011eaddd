package evcap

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/peterbourgon/evcap/internal/evdebug"
)

var (
	// ErrTargetClosed is returned by stream reads after the owning target has
	// been closed and all buffered values have been consumed.
	ErrTargetClosed = errors.New("target closed")
)

// Target is a generic publish/subscribe point. Every value emitted on a
// target is delivered to every currently registered handler, and to every
// stream created from the target.
//
// Emitted values are shared: handlers and stream consumers all receive the
// same pointer, and must treat the value as read-only.
type Target[T any] struct {
	mtx    sync.RWMutex
	subs   map[uuid.UUID]*Subscription[T]
	closed bool
}

// NewTarget returns an empty target.
func NewTarget[T any]() *Target[T] {
	return &Target[T]{
		subs: map[uuid.UUID]*Subscription[T]{},
	}
}

// Emit delivers the value to every registered handler, synchronously, on the
// calling goroutine, in unspecified order. Handlers are invoked over a
// snapshot of the registrations taken under a read lock, but outside of that
// lock, so a handler may itself emit, subscribe, or unsubscribe without
// deadlocking. A handler unsubscribed concurrently with an emit that already
// captured it may receive that one value; this is a benign race.
//
// Handlers are expected to be short and non-blocking: a slow handler
// directly delays the publisher. Long work should hand off to a stream.
func (t *Target[T]) Emit(v *T) {
	t.mtx.RLock()
	if t.closed || len(t.subs) <= 0 {
		t.mtx.RUnlock()
		return
	}
	snapshot := make([]*Subscription[T], 0, len(t.subs))
	for _, sub := range t.subs {
		snapshot = append(snapshot, sub)
	}
	t.mtx.RUnlock()

	for _, sub := range snapshot {
		sub.handler(v)
	}
	evdebug.EventFlow.Delivered.Add(uint64(len(snapshot)))
}

// Subscribe registers the handler, which will receive every value emitted
// from this point until the returned subscription is unsubscribed or the
// target is closed. The subscription handle is the sole owner of the
// registration. On a closed target, Subscribe returns an inert handle.
func (t *Target[T]) Subscribe(handler func(*T)) *Subscription[T] {
	return t.subscribe(handler, nil)
}

// subscribe registers the handler with onClose already attached, so a close
// racing the registration always observes the callback.
func (t *Target[T]) subscribe(handler func(*T), onClose func()) *Subscription[T] {
	sub := &Subscription[T]{
		id:      uuid.New(),
		target:  t,
		handler: handler,
		onClose: onClose,
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	if t.closed {
		sub.target = nil
		return sub
	}

	t.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the subscription from the target. It's a no-op if the
// subscription was already removed, or belongs to a different target.
func (t *Target[T]) Unsubscribe(sub *Subscription[T]) {
	sub.Unsubscribe()
}

// Stream returns an independent pull-style view of the target, backed by its
// own subscription and an unbounded queue. A slow stream consumer never
// blocks the publisher or other subscribers; the cost is unbounded memory
// growth in that stream's queue, which is an accepted tradeoff.
func (t *Target[T]) Stream() *Stream[T] {
	return newStream[T](t)
}

// Close disposes the target. All registrations are removed, all streams
// terminate once drained, and subsequent emits are dropped.
func (t *Target[T]) Close() {
	t.mtx.Lock()
	if t.closed {
		t.mtx.Unlock()
		return
	}
	t.closed = true
	snapshot := make([]*Subscription[T], 0, len(t.subs))
	for _, sub := range t.subs {
		snapshot = append(snapshot, sub)
	}
	t.subs = map[uuid.UUID]*Subscription[T]{}
	t.mtx.Unlock()

	for _, sub := range snapshot {
		sub.detach()
	}
}

//
//
//

// Subscription is the handle owning one handler registration on a target.
type Subscription[T any] struct {
	id      uuid.UUID
	target  *Target[T]
	handler func(*T)
	once    sync.Once
	onClose func()
}

// Unsubscribe removes the registration. It's idempotent: the handler is
// unregistered exactly once, and later calls are no-ops. An emit already in
// flight may still deliver one final value to the handler.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		if t := s.target; t != nil {
			t.mtx.Lock()
			delete(t.subs, s.id)
			t.mtx.Unlock()
		}
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// detach finalizes the subscription after the target has already removed it.
func (s *Subscription[T]) detach() {
	s.once.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
	})
}

//
//
//

// Stream is an infinite, non-restartable sequence of values emitted on a
// target after the stream was created. It terminates only when the target is
// closed or the stream is explicitly stopped.
type Stream[T any] struct {
	sub *Subscription[T]

	mtx     sync.Mutex
	pending []*T

	kick chan struct{}
	done chan struct{}
	out  chan *T

	stopOnce sync.Once
}

func newStream[T any](t *Target[T]) *Stream[T] {
	s := &Stream[T]{
		kick: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan *T),
	}

	// The handler only appends to the pending queue, so it never blocks the
	// emitting goroutine, no matter how slow the consumer is.
	s.sub = t.subscribe(func(v *T) {
		s.mtx.Lock()
		s.pending = append(s.pending, v)
		s.mtx.Unlock()

		select {
		case s.kick <- struct{}{}:
		default:
		}
	}, s.terminate)

	// A stream over an already-closed target is immediately terminal.
	if s.sub.target == nil {
		s.terminate()
	}

	go s.pump()

	return s
}

func (s *Stream[T]) pump() {
	for {
		s.mtx.Lock()
		var v *T
		if len(s.pending) > 0 {
			v, s.pending = s.pending[0], s.pending[1:]
		}
		s.mtx.Unlock()

		if v == nil {
			select {
			case <-s.kick:
				continue
			case <-s.done:
				close(s.out)
				return
			}
		}

		select {
		case s.out <- v:
		case <-s.done:
			close(s.out)
			return
		}
	}
}

func (s *Stream[T]) terminate() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// Recv blocks until the next value is available, the context is canceled, or
// the stream has terminated. Termination is reported as ErrTargetClosed.
func (s *Stream[T]) Recv(ctx context.Context) (*T, error) {
	select {
	case v, ok := <-s.out:
		if !ok {
			return nil, ErrTargetClosed
		}
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// C exposes the stream as a receive channel, which is closed on termination.
func (s *Stream[T]) C() <-chan *T {
	return s.out
}

// Stop unsubscribes the stream from its target and terminates the sequence.
// Values still queued but not yet received are discarded. Idempotent.
func (s *Stream[T]) Stop() {
	s.sub.Unsubscribe()
}
