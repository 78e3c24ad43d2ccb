package playback

import (
	"errors"
	"sync"
	"time"

	"rejourney/internal/frameindex"
)

// ErrNoPlayableData marks sessions that cannot be replayed at all (no
// positive duration). Callers surface an explicit unavailable state instead
// of presenting a zero-length session as fully played.
var ErrNoPlayableData = errors.New("no playable data")

// DefaultRate is the playback speed multiplier applied until SetRate is called.
const DefaultRate = 1.0

// State is the read model exposed to controls and render targets. It is a
// value snapshot: frame selection and overlay projection for one tick must
// see the same CurrentTime.
type State struct {
	CurrentTime float64 `json:"currentTime"`
	Playing     bool    `json:"isPlaying"`
	Rate        float64 `json:"rate"`
	FrameIndex  int     `json:"currentFrameIndex"`
	Duration    float64 `json:"durationSeconds"`
	Scrubbing   bool    `json:"scrubbing"`
}

// Clock is the virtual playback cursor. All methods are safe for concurrent
// use; the animation loop, IPC handlers, and HTTP handlers share one Clock.
type Clock struct {
	mu       sync.Mutex
	frames   *frameindex.Index
	duration float64

	current   float64
	rate      float64
	playing   bool
	scrubbing bool
	lastTick  time.Time
}

// NewClock builds a clock over the given frame index and playback duration.
// A non-positive duration has nothing to play and fails up front.
func NewClock(frames *frameindex.Index, durationSeconds float64) (*Clock, error) {
	if durationSeconds <= 0 {
		return nil, ErrNoPlayableData
	}
	return &Clock{
		frames:   frames,
		duration: durationSeconds,
		rate:     DefaultRate,
	}, nil
}

// Play transitions Paused -> Playing, capturing now as the wall-clock
// reference for the next tick. Playing again is a no-op.
func (c *Clock) Play(now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		// Replaying a finished session restarts from the top.
		if c.current >= c.duration {
			c.current = 0
		}
		c.playing = true
		c.lastTick = now
	}
	return c.stateLocked()
}

// Pause freezes the cursor where it is.
func (c *Clock) Pause() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	return c.stateLocked()
}

// Tick advances the cursor by the wall-clock time elapsed since the previous
// tick, scaled by the current rate. It is a no-op while paused or while a
// scrub drag is in progress. Reaching the end clamps the cursor to the
// duration and pauses; that pass of playback is over.
func (c *Clock) Tick(now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing || c.scrubbing {
		return c.stateLocked()
	}

	elapsed := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	if elapsed < 0 {
		elapsed = 0
	}
	c.current += elapsed * c.rate
	if c.current >= c.duration {
		c.current = c.duration
		c.playing = false
	}
	return c.stateLocked()
}

// Seek moves the cursor to target seconds, clamped to [0, duration]. The
// frame index updates immediately regardless of play state, and the play
// state itself is untouched. Out-of-range targets clamp; they never error.
func (c *Clock) Seek(target float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(target)
	return c.stateLocked()
}

// Skip moves the cursor by a signed offset in seconds.
func (c *Clock) Skip(seconds float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seekLocked(c.current + seconds)
	return c.stateLocked()
}

// SetRate updates the speed multiplier. It takes effect on the next tick and
// does not reset the cursor. Non-positive rates are ignored.
func (c *Clock) SetRate(rate float64) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rate > 0 {
		c.rate = rate
	}
	return c.stateLocked()
}

// Restart seeks to the start and begins playing.
func (c *Clock) Restart(now time.Time) State {
	c.mu.Lock()
	c.seekLocked(0)
	c.mu.Unlock()
	return c.Play(now)
}

// BeginScrub suspends ticking while a drag-seek is in progress so the
// displayed frame tracks the pointer exactly.
func (c *Clock) BeginScrub() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrubbing = true
	return c.stateLocked()
}

// EndScrub resumes normal ticking from the dropped position. The wall-clock
// reference resets to now so the time spent dragging is not replayed.
func (c *Clock) EndScrub(now time.Time) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrubbing = false
	c.lastTick = now
	return c.stateLocked()
}

// Snapshot returns the current state without advancing anything.
func (c *Clock) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Duration returns the fixed playback duration in seconds.
func (c *Clock) Duration() float64 {
	return c.duration
}

func (c *Clock) seekLocked(target float64) {
	if target < 0 {
		target = 0
	}
	if target > c.duration {
		target = c.duration
	}
	c.current = target
}

// stateLocked derives the frame index from the cursor on every read; the
// binary search keeps this cheap enough for per-tick use.
func (c *Clock) stateLocked() State {
	return State{
		CurrentTime: c.current,
		Playing:     c.playing,
		Rate:        c.rate,
		FrameIndex:  c.frames.AtOrBefore(c.current),
		Duration:    c.duration,
		Scrubbing:   c.scrubbing,
	}
}
