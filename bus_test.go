package evcap_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/peterbourgon/evcap"
)

func TestTargetSubscribeEmitUnsubscribe(t *testing.T) {
	t.Parallel()

	target := evcap.NewTarget[evcap.Event]()

	var received []string
	sub := target.Subscribe(func(ev *evcap.Event) {
		received = append(received, ev.Data.Message)
	})

	target.Emit(newTestEvent("one", evcap.LevelInfo, "test"))
	target.Emit(newTestEvent("two", evcap.LevelInfo, "test"))
	target.Emit(newTestEvent("three", evcap.LevelInfo, "test"))

	AssertEqual(t, 3, len(received))
	AssertEqual(t, "one", received[0])
	AssertEqual(t, "two", received[1])
	AssertEqual(t, "three", received[2])

	sub.Unsubscribe()

	target.Emit(newTestEvent("four", evcap.LevelInfo, "test"))

	AssertEqual(t, 3, len(received))

	// Unsubscribe is idempotent.
	sub.Unsubscribe()
	target.Unsubscribe(sub)
}

func TestTargetSharedDelivery(t *testing.T) {
	t.Parallel()

	target := evcap.NewTarget[evcap.Event]()

	var first, second *evcap.Event
	target.Subscribe(func(ev *evcap.Event) { first = ev })
	target.Subscribe(func(ev *evcap.Event) { second = ev })

	emitted := newTestEvent("shared", evcap.LevelWarn, "test")
	target.Emit(emitted)

	// Every handler receives the same instance, not a copy.
	if first != emitted || second != emitted {
		t.Fatal("handlers must receive the emitted event instance")
	}
}

func TestTargetReentrantEmit(t *testing.T) {
	t.Parallel()

	target := evcap.NewTarget[evcap.Event]()

	var messages []string
	target.Subscribe(func(ev *evcap.Event) {
		messages = append(messages, ev.Data.Message)
		if ev.Data.Message == "outer" {
			// Handlers may emit and subscribe without deadlock.
			target.Subscribe(func(*evcap.Event) {})
			target.Emit(newTestEvent("inner", evcap.LevelDebug, "test"))
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		target.Emit(newTestEvent("outer", evcap.LevelDebug, "test"))
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("re-entrant emit deadlocked")
	}

	AssertEqual(t, 2, len(messages))
	AssertEqual(t, "outer", messages[0])
	AssertEqual(t, "inner", messages[1])
}

func TestTargetConcurrency(t *testing.T) {
	t.Parallel()

	var (
		target     = evcap.NewTarget[evcap.Event]()
		emitters   = 8
		perEmitter = 100
	)

	var (
		mtx   sync.Mutex
		count int
	)
	target.Subscribe(func(*evcap.Event) {
		mtx.Lock()
		count++
		mtx.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < emitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perEmitter; j++ {
				target.Emit(newTestEvent("concurrent", evcap.LevelTrace, "test"))
			}
		}()
	}
	for i := 0; i < emitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := target.Subscribe(func(*evcap.Event) {})
			sub.Unsubscribe()
		}()
	}
	wg.Wait()

	AssertEqual(t, emitters*perEmitter, count)
}

func TestStream(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	target := evcap.NewTarget[evcap.Event]()

	stream := target.Stream()
	defer stream.Stop()

	for _, msg := range []string{"a", "b", "c"} {
		target.Emit(newTestEvent(msg, evcap.LevelInfo, "test"))
	}

	for _, want := range []string{"a", "b", "c"} {
		ev, err := stream.Recv(ctx)
		AssertNoError(t, err)
		AssertEqual(t, want, ev.Data.Message)
	}

	// Recv blocks until the next emit.
	recvd := make(chan string, 1)
	go func() {
		ev, err := stream.Recv(ctx)
		if err != nil {
			recvd <- "error: " + err.Error()
			return
		}
		recvd <- ev.Data.Message
	}()

	time.Sleep(10 * time.Millisecond)
	target.Emit(newTestEvent("late", evcap.LevelInfo, "test"))

	select {
	case msg := <-recvd:
		AssertEqual(t, "late", msg)
	case <-time.After(5 * time.Second):
		t.Fatal("stream receive timed out")
	}
}

func TestStreamIndependentConsumers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	target := evcap.NewTarget[evcap.Event]()

	fast := target.Stream()
	defer fast.Stop()

	slow := target.Stream() // never reads until the end
	defer slow.Stop()

	// A stalled stream consumer must not block the publisher or other
	// consumers: emit is decoupled from consumption by per-stream queues.
	for i := 0; i < 1000; i++ {
		target.Emit(newTestEvent("x", evcap.LevelInfo, "test"))
	}

	for i := 0; i < 1000; i++ {
		_, err := fast.Recv(ctx)
		AssertNoError(t, err)
	}

	ev, err := slow.Recv(ctx)
	AssertNoError(t, err)
	AssertEqual(t, "x", ev.Data.Message)
}

func TestStreamTerminatesOnClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	target := evcap.NewTarget[evcap.Event]()

	stream := target.Stream()

	target.Emit(newTestEvent("before", evcap.LevelInfo, "test"))

	_, err := stream.Recv(ctx)
	AssertNoError(t, err)

	target.Close()

	_, err = stream.Recv(ctx)
	AssertErrorIs(t, err, evcap.ErrTargetClosed)

	// Emit on a closed target is a no-op, and a new stream is terminal.
	target.Emit(newTestEvent("after", evcap.LevelInfo, "test"))

	late := target.Stream()
	_, err = late.Recv(ctx)
	AssertErrorIs(t, err, evcap.ErrTargetClosed)
}

func TestStreamCloseConcurrentWithCreate(t *testing.T) {
	t.Parallel()

	// A close landing at any point during stream creation, before, after, or
	// between the registration and the first receive, must still terminate
	// the stream. Recv may never block forever on a closed target.
	for i := 0; i < 100; i++ {
		target := evcap.NewTarget[evcap.Event]()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			target.Close()
		}()

		stream := target.Stream()
		wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := stream.Recv(ctx)
		cancel()
		AssertErrorIs(t, err, evcap.ErrTargetClosed)
	}
}

func TestStreamRecvContextCanceled(t *testing.T) {
	t.Parallel()

	target := evcap.NewTarget[evcap.Event]()

	stream := target.Stream()
	defer stream.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := stream.Recv(ctx)
	AssertErrorIs(t, err, context.DeadlineExceeded)
}
