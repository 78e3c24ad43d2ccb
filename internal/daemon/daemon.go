package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"rejourney/internal/config"
	"rejourney/internal/density"
	"rejourney/internal/logging"
	"rejourney/internal/overlay"
	"rejourney/internal/playback"
	"rejourney/internal/replay"
	"rejourney/internal/session"
	"rejourney/internal/sessionstore"
	"rejourney/internal/timeline"
)

// ErrNoActiveSession marks playback calls issued before a session is loaded.
var ErrNoActiveSession = errors.New("no session loaded")

// Daemon hosts the session archive and at most one active replay player,
// and enforces single-instance execution via a lock file.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sessionstore.Store
	logPath string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	api     *apiServer

	mu       sync.Mutex
	player   *replay.Player
	activeID string
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	StorePath     string
	LockFilePath  string
	SessionCount  int
	ActiveSession string
	Playback      *playback.State
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *sessionstore.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		logPath:  filepath.Join(cfg.Paths.LogDir, "rejourney.log"),
		lockPath: cfg.Paths.LockFile,
		lock:     flock.New(cfg.Paths.LockFile),
	}, nil
}

// Start acquires the daemon lock and brings up the HTTP API when configured.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another rejourney daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	api, err := newAPIServer(d.cfg, d, d.logger)
	if err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}
	d.api = api
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			d.api = nil
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("rejourney daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop unloads the active player, shuts the API down, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.Unload()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.api = nil
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("rejourney daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	count, err := d.store.Count(ctx)
	if err != nil {
		count = 0
	}
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		StorePath:    d.store.Path(),
		LockFilePath: d.lockPath,
		SessionCount: count,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player != nil {
		state := d.player.State()
		status.ActiveSession = d.activeID
		status.Playback = &state
	}
	return status
}

// ListSessions returns summaries for all archived sessions.
func (d *Daemon) ListSessions(ctx context.Context) ([]sessionstore.Summary, error) {
	return d.store.List(ctx)
}

// DescribeSession returns the summary for one archived session.
func (d *Daemon) DescribeSession(ctx context.Context, id string) (sessionstore.Summary, error) {
	return d.store.Describe(ctx, id)
}

// GetSession loads a full archived session payload.
func (d *Daemon) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return d.store.Get(ctx, id)
}

// IngestPayload decodes a raw capture payload and archives it.
func (d *Daemon) IngestPayload(ctx context.Context, payload []byte) (*session.Session, error) {
	sess, err := session.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	stored, err := d.store.Ingest(ctx, sess)
	if err != nil {
		return nil, err
	}
	d.logger.Info("session ingested",
		logging.String(logging.FieldSessionID, stored.ID),
		logging.Int("event_count", len(stored.Events)),
		logging.Int("frame_count", len(stored.Frames)))
	return stored, nil
}

// DeleteSession removes an archived session, unloading it first when active.
func (d *Daemon) DeleteSession(ctx context.Context, id string) error {
	d.mu.Lock()
	if d.activeID == id && d.player != nil {
		d.player.Stop()
		d.player = nil
		d.activeID = ""
	}
	d.mu.Unlock()
	return d.store.Delete(ctx, id)
}

// Load builds a replay player for the archived session and makes it the
// active one. Any previously loaded session is stopped and replaced.
func (d *Daemon) Load(ctx context.Context, id string) (playback.State, error) {
	sess, err := d.store.Get(ctx, id)
	if err != nil {
		return playback.State{}, err
	}

	player, err := replay.NewPlayer(sess, d.cfg, d.logger)
	if err != nil {
		return playback.State{}, fmt.Errorf("load session %s: %w", id, err)
	}

	runCtx := d.ctx
	if runCtx == nil {
		runCtx = ctx
	}

	d.mu.Lock()
	if d.player != nil {
		d.player.Stop()
	}
	d.player = player
	d.activeID = id
	player.Start(runCtx)
	state := player.State()
	d.mu.Unlock()

	d.logger.Info("session loaded for replay",
		logging.String(logging.FieldSessionID, id),
		logging.Float64("duration_seconds", player.Duration()))
	return state, nil
}

// Unload stops and discards the active player, if any.
func (d *Daemon) Unload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return
	}
	d.player.Stop()
	d.player = nil
	d.activeID = ""
}

// ActiveSession returns the ID of the loaded session, or empty.
func (d *Daemon) ActiveSession() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeID
}

func (d *Daemon) activePlayer() (*replay.Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return nil, ErrNoActiveSession
	}
	return d.player, nil
}

// PlaybackState reports the clock state of the active session.
func (d *Daemon) PlaybackState() (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.State(), nil
}

// Play resumes the active session's clock.
func (d *Daemon) Play() (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.Play(), nil
}

// Pause halts the active session's clock.
func (d *Daemon) Pause() (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.Pause(), nil
}

// Seek jumps the active session to an absolute position in seconds.
func (d *Daemon) Seek(seconds float64) (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.Seek(seconds), nil
}

// Skip moves the active session by a relative number of seconds.
func (d *Daemon) Skip(seconds float64) (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.Skip(seconds), nil
}

// SetRate changes the active session's playback speed multiplier.
func (d *Daemon) SetRate(rate float64) (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.SetRate(rate), nil
}

// Restart rewinds the active session to the beginning and plays.
func (d *Daemon) Restart() (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.Restart(), nil
}

// BeginScrub suspends clock advancement while the user drags the timeline.
func (d *Daemon) BeginScrub() (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.BeginScrub(), nil
}

// EndScrub resumes clock advancement after a timeline drag.
func (d *Daemon) EndScrub() (playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return playback.State{}, err
	}
	return player.EndScrub(), nil
}

// Overlay projects the gesture overlay for the active session's current
// position.
func (d *Daemon) Overlay() ([]overlay.Touch, playback.State, error) {
	player, err := d.activePlayer()
	if err != nil {
		return nil, playback.State{}, err
	}
	state := player.State()
	return player.OverlayAt(state), state, nil
}

// DensityStrip returns the active session's timeline density aggregation.
func (d *Daemon) DensityStrip() (density.Strip, error) {
	player, err := d.activePlayer()
	if err != nil {
		return density.Strip{}, err
	}
	return player.Density(), nil
}

// Timeline returns the active session's normalized event timeline.
func (d *Daemon) Timeline() ([]session.Event, error) {
	player, err := d.activePlayer()
	if err != nil {
		return nil, err
	}
	return player.Timeline(), nil
}

// SessionTimeline normalizes the timeline for an archived session without
// loading it for playback.
func (d *Daemon) SessionTimeline(ctx context.Context, id string) ([]session.Event, error) {
	sess, err := d.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return timeline.Normalize(sess.Events, sess.NetworkRequests, sess.Crashes), nil
}

// SessionDensity aggregates the density strip for an archived session
// without loading it for playback.
func (d *Daemon) SessionDensity(ctx context.Context, id string) (density.Strip, error) {
	sess, err := d.store.Get(ctx, id)
	if err != nil {
		return density.Strip{}, err
	}
	events := timeline.Normalize(sess.Events, sess.NetworkRequests, sess.Crashes)
	duration := timeline.EstimateDuration(sess, events, d.cfg.Playback.FallbackDurationSeconds)
	return density.Aggregate(events, sess.StartTime, duration, d.cfg.Density.BucketCount), nil
}
