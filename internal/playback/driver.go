package playback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rejourney/internal/logging"
)

// DefaultTickInterval approximates a display refresh cadence.
const DefaultTickInterval = 16 * time.Millisecond

// TickFunc receives the snapshot produced by each tick. Frame draw and
// overlay projection both derive from this one State value.
type TickFunc func(State)

// Driver runs the animation loop for a Clock. Start and Stop are not safe to
// call concurrently with each other; everything the loop touches is.
type Driver struct {
	clock    *Clock
	interval time.Duration
	logger   *slog.Logger
	onTick   TickFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver builds a driver ticking at interval (DefaultTickInterval when
// non-positive). onTick may be nil when callers poll the clock instead.
func NewDriver(clock *Clock, interval time.Duration, logger *slog.Logger, onTick TickFunc) *Driver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		clock:    clock,
		interval: interval,
		logger:   logger,
		onTick:   onTick,
	}
}

// Start launches the loop goroutine. It stops when ctx is cancelled or Stop
// is called. Starting an already-running driver is a no-op.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.run(loopCtx, d.done)
}

// Stop cancels the loop and waits for the goroutine to exit, guaranteeing no
// tick callback fires after Stop returns.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	d.cancel = nil
	d.done = nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (d *Driver) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Debug("playback loop started", logging.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("playback loop stopped")
			return
		case now := <-ticker.C:
			state := d.clock.Tick(now)
			if d.onTick != nil {
				d.onTick(state)
			}
		}
	}
}
