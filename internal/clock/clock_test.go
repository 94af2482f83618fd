package clock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/warpdl/warptimer/pkg/logger"
)

// fakeNow is a manually advanced clock.
type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Add(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestSource(t *testing.T) (*Source, *fakeNow) {
	t.Helper()
	now := &fakeNow{t: epoch}
	s := New(context.Background(), Options{
		FastInterval: 5 * time.Millisecond,
		SlowInterval: 20 * time.Millisecond,
		Now:          now.Now,
	})
	t.Cleanup(s.Close)
	return s, now
}

func nextEvent(t *testing.T, s *Source) Event {
	t.Helper()
	select {
	case e := <-s.Events():
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

// sync waits until every command sent before it has been applied.
func syncSource(t *testing.T, s *Source, nonce uint64) {
	t.Helper()
	s.Ping(nonce)
	for {
		e := nextEvent(t, s)
		if e.Kind == EventPong && e.Nonce == nonce {
			return
		}
	}
}

func TestSource_UpdateThenComplete(t *testing.T) {
	s, now := newTestSource(t)
	s.Start("a", 3, 3)
	syncSource(t, s, 1)

	now.Add(2500 * time.Millisecond)
	e := nextEvent(t, s)
	if e.Kind != EventUpdate || e.TimerID != "a" || e.RemainingSeconds != 1 || e.Run != 3 {
		t.Fatalf("expected update to 1, got %+v", e)
	}

	now.Add(600 * time.Millisecond)
	e = nextEvent(t, s)
	if !e.Completed() || e.TimerID != "a" || e.RemainingSeconds != 0 {
		t.Fatalf("expected completion, got %+v", e)
	}

	select {
	case e := <-s.Events():
		t.Fatalf("expected no further events, got %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSource_StopSilences(t *testing.T) {
	s, now := newTestSource(t)
	s.Start("a", 1, 10)
	s.Stop("a")
	syncSource(t, s, 1)

	now.Add(5 * time.Second)
	select {
	case e := <-s.Events():
		t.Fatalf("expected no events after stop, got %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSource_SlowCadenceStillCounts(t *testing.T) {
	s, now := newTestSource(t)
	s.SetVisibility(true)
	s.Start("a", 1, 10)
	syncSource(t, s, 1)

	now.Add(3 * time.Second)
	e := nextEvent(t, s)
	if e.Kind != EventUpdate || e.RemainingSeconds != 7 {
		t.Fatalf("expected update to 7 while hidden, got %+v", e)
	}
}

func TestSource_PongEchoesNonce(t *testing.T) {
	s, _ := newTestSource(t)
	s.Ping(42)
	e := nextEvent(t, s)
	if e.Kind != EventPong || e.Nonce != 42 {
		t.Fatalf("expected pong 42, got %+v", e)
	}
}

func TestSource_CloseIsPrompt(t *testing.T) {
	s := New(context.Background(), Options{})
	s.Start("a", 1, 100)

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	// commands after close must not block
	s.Stop("a")
	s.Ping(1)
}

func TestSource_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, Options{})
	cancel()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not exit on cancel")
	}
}

func TestSource_HungLoopDoesNotBlockSenders(t *testing.T) {
	gate := make(chan struct{})
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	defer release()

	mock := logger.NewMockLogger()
	s := New(context.Background(), Options{
		Now: func() time.Time {
			<-gate
			return epoch
		},
		SendTimeout: 20 * time.Millisecond,
		Log:         mock,
	})

	// the first Start wedges the loop inside Now
	s.Start("a", 1, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.Stop("a")
		}
		s.Ping(7)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("senders blocked on a hung clock")
	}
	if len(mock.Warnings()) == 0 {
		t.Error("expected the stall to be logged")
	}

	release()
	s.Close()
	for e := range drain(s) {
		if e.Kind == EventPong {
			t.Fatal("a stalled source must not answer pings")
		}
	}
}

// drain returns whatever events are still buffered.
func drain(s *Source) <-chan Event {
	out := make(chan Event, 64)
	defer close(out)
	for {
		select {
		case e := <-s.Events():
			out <- e
		default:
			return out
		}
	}
}
