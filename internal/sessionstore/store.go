package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"rejourney/internal/config"
	"rejourney/internal/session"
	"rejourney/internal/timeline"
)

// ErrSessionNotFound marks lookups for sessions the archive does not hold.
var ErrSessionNotFound = errors.New("session not found")

// Summary is the list-view projection of a stored session.
type Summary struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	StartTime       int64     `json:"startTime"`
	DurationSeconds float64   `json:"durationSeconds"`
	EventCount      int       `json:"eventCount"`
	FrameCount      int       `json:"frameCount"`
	CrashCount      int       `json:"crashCount"`
	RageTapCount    int       `json:"rageTapCount"`
}

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the session database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.StorePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Ingest stores a session payload, assigning an ID when the payload carries
// none, and returns the stored session. Summary columns are derived from
// the normalized timeline so listings agree with what replay will show.
func (s *Store) Ingest(ctx context.Context, sess *session.Session) (*session.Session, error) {
	if sess == nil {
		return nil, errors.New("nil session")
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	events := timeline.Normalize(sess.Events, sess.NetworkRequests, sess.Crashes)
	duration := timeline.EstimateDuration(sess, events, 0)

	rageTaps := 0
	for _, ev := range events {
		if ev.Type == session.TypeRageTap {
			rageTaps++
		}
	}

	payload, err := sess.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode session payload: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (
            id, created_at, start_time, duration_seconds,
            event_count, frame_count, crash_count, rage_tap_count, payload_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, json(?))`,
		sess.ID,
		now,
		sess.StartTime,
		duration,
		len(events),
		len(sess.Frames),
		len(sess.Crashes),
		rageTaps,
		string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Get loads a full session payload by ID.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload_json FROM sessions WHERE id = ?", id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess, err := session.Parse([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return sess, nil
}

// List returns summaries for all stored sessions, newest start first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, start_time, duration_seconds,
                event_count, frame_count, crash_count, rage_tap_count
         FROM sessions ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sm Summary
		var createdAt string
		if err := rows.Scan(&sm.ID, &createdAt, &sm.StartTime, &sm.DurationSeconds,
			&sm.EventCount, &sm.FrameCount, &sm.CrashCount, &sm.RageTapCount); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			sm.CreatedAt = parsed
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

// Describe returns the summary for one session.
func (s *Store) Describe(ctx context.Context, id string) (Summary, error) {
	var sm Summary
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, start_time, duration_seconds,
                event_count, frame_count, crash_count, rage_tap_count
         FROM sessions WHERE id = ?`, id,
	).Scan(&sm.ID, &createdAt, &sm.StartTime, &sm.DurationSeconds,
		&sm.EventCount, &sm.FrameCount, &sm.CrashCount, &sm.RageTapCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("describe session: %w", err)
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		sm.CreatedAt = parsed
	}
	return sm, nil
}

// Delete removes a stored session.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}
