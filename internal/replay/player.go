package replay

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rejourney/internal/config"
	"rejourney/internal/density"
	"rejourney/internal/frameindex"
	"rejourney/internal/logging"
	"rejourney/internal/overlay"
	"rejourney/internal/playback"
	"rejourney/internal/preload"
	"rejourney/internal/session"
	"rejourney/internal/timeline"
)

// ErrNoPlayableData re-exports the playback sentinel for callers that only
// import the facade.
var ErrNoPlayableData = playback.ErrNoPlayableData

// Player hosts playback for one session. Construction derives everything
// up front from the immutable payload; the only mutable piece afterwards is
// the clock.
type Player struct {
	sess      *session.Session
	events    []session.Event
	rageTimes []int64
	frames    *frameindex.Index
	clock     *playback.Clock
	driver    *playback.Driver
	preloader *preload.Preloader
	strip     density.Strip
	duration  float64
	logger    *slog.Logger

	loopCtx    context.Context
	loopCancel context.CancelFunc
}

// NewPlayer builds a player for sess. It fails with ErrNoPlayableData when
// the session has no screenshot frames or no positive duration; callers
// surface that as an explicit unavailable state. The timeline, density
// strip, and rage-tap groups are still derivable by the caller from the
// session itself in that case, since they do not depend on frames.
func NewPlayer(sess *session.Session, cfg *config.Config, logger *slog.Logger) (*Player, error) {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	logger = logging.NewComponentLogger(logger, "replay")

	events := timeline.Normalize(sess.Events, sess.NetworkRequests, sess.Crashes)
	duration := timeline.EstimateDuration(sess, events, cfg.Playback.FallbackDurationSeconds)
	frames := frameindex.Build(sess.Frames, sess.StartTime)
	if frames.Len() == 0 {
		return nil, playback.ErrNoPlayableData
	}

	clock, err := playback.NewClock(frames, duration)
	if err != nil {
		return nil, err
	}
	clock.SetRate(cfg.Playback.DefaultRate)

	var rageTimes []int64
	for _, ev := range events {
		if ev.Type == session.TypeRageTap {
			rageTimes = append(rageTimes, ev.Timestamp)
		}
	}

	p := &Player{
		sess:      sess,
		events:    events,
		rageTimes: rageTimes,
		frames:    frames,
		clock:     clock,
		strip:     density.Aggregate(events, sess.StartTime, duration, cfg.Density.BucketCount),
		duration:  duration,
		logger:    logger,
	}

	if cfg.Preload.Enabled {
		client := &http.Client{Timeout: cfg.PreloadTimeout()}
		p.preloader = preload.New(cfg.Preload, client, logger)
	}

	p.driver = playback.NewDriver(clock, cfg.TickInterval(), logger, p.onTick)
	return p, nil
}

// Start launches the animation loop. Playback itself still waits for Play.
func (p *Player) Start(ctx context.Context) {
	p.loopCtx, p.loopCancel = context.WithCancel(ctx)
	p.driver.Start(p.loopCtx)
	p.warmPreload(0)
	p.logger.Info("player started",
		logging.String(logging.FieldSessionID, p.sess.ID),
		logging.Float64("duration_seconds", p.duration),
		logging.Int("frames", p.frames.Len()),
		logging.Int("timeline_events", len(p.events)))
}

// Stop tears the loop down. No tick fires after Stop returns.
func (p *Player) Stop() {
	if p.loopCancel != nil {
		p.loopCancel()
	}
	p.driver.Stop()
	p.logger.Info("player stopped", logging.String(logging.FieldSessionID, p.sess.ID))
}

func (p *Player) onTick(state playback.State) {
	p.warmPreload(state.FrameIndex)
}

func (p *Player) warmPreload(frameIdx int) {
	if p.preloader == nil || p.loopCtx == nil {
		return
	}
	p.preloader.PreloadAround(p.loopCtx, p.frames.Frames(), frameIdx)
}

// Session returns the immutable payload the player was built from.
func (p *Player) Session() *session.Session {
	return p.sess
}

// Timeline returns the normalized event stream, rage taps included.
func (p *Player) Timeline() []session.Event {
	return p.events
}

// Density returns the precomputed density strip.
func (p *Player) Density() density.Strip {
	return p.strip
}

// Duration returns the estimated playback duration in seconds.
func (p *Player) Duration() float64 {
	return p.duration
}

// Frames returns the sorted, annotated frame index.
func (p *Player) Frames() *frameindex.Index {
	return p.frames
}

// State snapshots the clock without advancing it.
func (p *Player) State() playback.State {
	return p.clock.Snapshot()
}

// Play starts or resumes playback.
func (p *Player) Play() playback.State {
	return p.clock.Play(time.Now())
}

// Pause freezes the cursor.
func (p *Player) Pause() playback.State {
	return p.clock.Pause()
}

// Seek moves the cursor, clamped to the playable range.
func (p *Player) Seek(seconds float64) playback.State {
	state := p.clock.Seek(seconds)
	p.warmPreload(state.FrameIndex)
	return state
}

// Skip moves the cursor by a signed offset in seconds.
func (p *Player) Skip(seconds float64) playback.State {
	state := p.clock.Skip(seconds)
	p.warmPreload(state.FrameIndex)
	return state
}

// SetRate changes the speed multiplier for subsequent ticks.
func (p *Player) SetRate(rate float64) playback.State {
	return p.clock.SetRate(rate)
}

// Restart seeks to zero and plays.
func (p *Player) Restart() playback.State {
	return p.clock.Restart(time.Now())
}

// BeginScrub suspends ticking for the duration of a drag-seek.
func (p *Player) BeginScrub() playback.State {
	return p.clock.BeginScrub()
}

// EndScrub resumes ticking from the dropped position.
func (p *Player) EndScrub() playback.State {
	return p.clock.EndScrub(time.Now())
}

// OverlayAt projects the touch overlay for a given clock snapshot. Using the
// snapshot rather than re-reading the clock keeps the overlay on the same
// cursor value as the frame drawn for that tick.
func (p *Player) OverlayAt(state playback.State) []overlay.Touch {
	nowMillis := p.sess.StartTime + int64(state.CurrentTime*1000)
	return overlay.Project(p.events, p.rageTimes, nowMillis,
		p.sess.Device.ScreenWidth, p.sess.Device.ScreenHeight)
}

// FrameAt resolves the frame for a clock snapshot, plus the cached image
// bytes when the preloader already has them. ok is false when the image is
// not cached yet; the draw step keeps the previous frame visible.
func (p *Player) FrameAt(state playback.State) (session.Frame, []byte, bool) {
	frame := p.frames.At(state.FrameIndex)
	if p.preloader == nil {
		return frame, nil, false
	}
	data, ok := p.preloader.Cache().Get(frame.URL)
	return frame, data, ok
}
