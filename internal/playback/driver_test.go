package playback

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDriverTicksWhilePlaying(t *testing.T) {
	clock := newTestClock(t, 60)
	clock.Play(time.Now())

	var ticks atomic.Int64
	driver := NewDriver(clock, time.Millisecond, nil, func(State) {
		ticks.Add(1)
	})
	driver.Start(context.Background())
	defer driver.Stop()

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("driver never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if st := clock.Snapshot(); st.CurrentTime <= 0 {
		t.Errorf("currentTime = %v, want advanced", st.CurrentTime)
	}
}

func TestDriverStopPreventsLateTicks(t *testing.T) {
	clock := newTestClock(t, 60)
	clock.Play(time.Now())

	var ticks atomic.Int64
	driver := NewDriver(clock, time.Millisecond, nil, func(State) {
		ticks.Add(1)
	})
	driver.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	driver.Stop()

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Errorf("ticks fired after Stop: %d -> %d", after, got)
	}
}

func TestDriverStopsOnContextCancel(t *testing.T) {
	clock := newTestClock(t, 60)
	ctx, cancel := context.WithCancel(context.Background())

	driver := NewDriver(clock, time.Millisecond, nil, nil)
	driver.Start(ctx)
	cancel()

	// Stop must return even though the context already tore the loop down.
	done := make(chan struct{})
	go func() {
		driver.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung after context cancellation")
	}
}

func TestDriverStopIdempotent(t *testing.T) {
	clock := newTestClock(t, 60)
	driver := NewDriver(clock, time.Millisecond, nil, nil)
	driver.Stop() // never started
	driver.Start(context.Background())
	driver.Stop()
	driver.Stop()
}

func TestDriverRestartable(t *testing.T) {
	clock := newTestClock(t, 60)
	clock.Play(time.Now())

	var ticks atomic.Int64
	driver := NewDriver(clock, time.Millisecond, nil, func(State) { ticks.Add(1) })

	driver.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	driver.Stop()

	first := ticks.Load()
	driver.Start(context.Background())
	defer driver.Stop()

	deadline := time.After(2 * time.Second)
	for ticks.Load() <= first {
		select {
		case <-deadline:
			t.Fatal("driver did not tick after restart")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
