package debounce

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
	waits  []time.Duration
}

func (c *fakeClock) schedule(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{fn: fn}
	c.timers = append(c.timers, timer)
	c.waits = append(c.waits, d)
	return timer
}

// fireAll runs every timer callback, stopped or not, the way a real timer
// that already fired would race with Stop.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, timer := range timers {
		timer.fn()
	}
}

func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1]
}

func TestDebouncerRunsLastValueOnce(t *testing.T) {
	clock := &fakeClock{}
	var got []int
	d := New(500*time.Millisecond, func(v int) { got = append(got, v) }, WithScheduler(clock.schedule))

	d.Call(1)
	d.Call(2)
	d.Call(3)

	if !d.Pending() {
		t.Fatalf("expected pending invocation")
	}
	clock.fireAll()

	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("expected single invocation with 3, got %v", got)
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending after fire")
	}
	if clock.waits[0] != 500*time.Millisecond {
		t.Fatalf("unexpected wait %v", clock.waits[0])
	}
}

func TestDebouncerSupersededTimersAreStopped(t *testing.T) {
	clock := &fakeClock{}
	d := New(time.Second, func(int) {}, WithScheduler(clock.schedule))

	d.Call(1)
	first := clock.last()
	d.Call(2)

	if !first.stopped {
		t.Fatalf("expected superseded timer to be stopped")
	}
	d.Cancel()
}

func TestDebouncerFlushRunsSynchronously(t *testing.T) {
	clock := &fakeClock{}
	var outcomes []Outcome
	var got []string
	d := New(time.Hour, func(v string) { got = append(got, v) },
		WithScheduler(clock.schedule),
		WithObserver(func(o Outcome) { outcomes = append(outcomes, o) }),
	)

	d.Call("a")
	if !d.Flush() {
		t.Fatalf("expected flush to report a pending call")
	}
	if len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected flushed value, got %v", got)
	}

	clock.fireAll()
	if len(got) != 1 {
		t.Fatalf("timer fired after flush: %v", got)
	}
	if d.Flush() {
		t.Fatalf("expected second flush to be a no-op")
	}
	if len(outcomes) != 1 || outcomes[0] != OutcomeFlushed {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
}

func TestDebouncerCancelAndStop(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	d := New(time.Second, func(int) { calls++ }, WithScheduler(clock.schedule))

	d.Call(1)
	if !d.Cancel() {
		t.Fatalf("expected cancel to drop pending call")
	}
	clock.fireAll()
	if calls != 0 {
		t.Fatalf("cancelled call ran")
	}

	d.Stop()
	d.Call(2)
	if d.Pending() {
		t.Fatalf("calls after stop must be ignored")
	}
	if calls != 0 {
		t.Fatalf("unexpected calls %d", calls)
	}
}

func TestDebouncerExclusiveDropsPending(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	d := New(time.Second, func(int) { calls++ }, WithScheduler(clock.schedule))

	d.Call(1)
	ran := false
	if !d.Exclusive(func() { ran = true }) {
		t.Fatalf("expected exclusive to drop the pending call")
	}
	clock.fireAll()
	if !ran || calls != 0 {
		t.Fatalf("expected fn to run and the pending call to be dropped, ran=%v calls=%d", ran, calls)
	}
	if d.Exclusive(nil) {
		t.Fatalf("nothing pending the second time")
	}
}

func TestDebouncerExclusiveWaitsForRunningCall(t *testing.T) {
	clock := &fakeClock{}
	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var order []string
	d := New(time.Second, func(int) {
		close(entered)
		<-release
		mu.Lock()
		order = append(order, "call")
		mu.Unlock()
	}, WithScheduler(clock.schedule))

	d.Call(1)
	fired := make(chan struct{})
	go func() {
		defer close(fired)
		clock.fireAll()
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Exclusive(func() {
			mu.Lock()
			order = append(order, "exclusive")
			mu.Unlock()
		})
	}()

	select {
	case <-done:
		t.Fatalf("exclusive ran while a call was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-fired
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "call" || order[1] != "exclusive" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestDebouncerRealTimer(t *testing.T) {
	done := make(chan int, 1)
	d := New(10*time.Millisecond, func(v int) { done <- v })

	d.Call(7)
	d.Call(8)

	select {
	case v := <-done:
		if v != 8 {
			t.Fatalf("expected 8, got %d", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced call never ran")
	}
}

func TestFuncWrapper(t *testing.T) {
	done := make(chan string, 1)
	call := Func(5*time.Millisecond, func(v string) { done <- v })
	call("x")
	call("y")

	select {
	case v := <-done:
		if v != "y" {
			t.Fatalf("expected y, got %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("wrapped call never ran")
	}
}
