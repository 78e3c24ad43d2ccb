package ipc

import (
	"encoding/json"

	"rejourney/internal/density"
	"rejourney/internal/overlay"
	"rejourney/internal/playback"
	"rejourney/internal/session"
	"rejourney/internal/sessionstore"
)

// SessionSummary mirrors the archive's list projection for IPC callers.
type SessionSummary = sessionstore.Summary

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and playback status information.
type StatusResponse struct {
	Running       bool            `json:"running"`
	PID           int             `json:"pid"`
	StorePath     string          `json:"store_path"`
	LockPath      string          `json:"lock_path"`
	SessionCount  int             `json:"session_count"`
	ActiveSession string          `json:"active_session"`
	Playback      *playback.State `json:"playback,omitempty"`
}

// SessionListRequest lists archived sessions.
type SessionListRequest struct{}

// SessionListResponse contains session summaries, newest start first.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionDescribeRequest fetches a single session summary by id.
type SessionDescribeRequest struct {
	ID string `json:"id"`
}

// SessionDescribeResponse contains a single session summary.
type SessionDescribeResponse struct {
	Summary SessionSummary `json:"summary"`
}

// SessionIngestRequest archives a raw capture payload.
type SessionIngestRequest struct {
	Payload json.RawMessage `json:"payload"`
}

// SessionIngestResponse reports the stored session.
type SessionIngestResponse struct {
	Summary SessionSummary `json:"summary"`
}

// SessionDeleteRequest removes an archived session.
type SessionDeleteRequest struct {
	ID string `json:"id"`
}

// SessionDeleteResponse reports delete outcome.
type SessionDeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// LoadRequest makes an archived session the active replay.
type LoadRequest struct {
	ID string `json:"id"`
}

// UnloadRequest discards the active replay.
type UnloadRequest struct{}

// UnloadResponse reports unload outcome.
type UnloadResponse struct {
	Unloaded bool `json:"unloaded"`
}

// PlayRequest resumes the active replay clock.
type PlayRequest struct{}

// PauseRequest halts the active replay clock.
type PauseRequest struct{}

// SeekRequest jumps to an absolute position in seconds.
type SeekRequest struct {
	Seconds float64 `json:"seconds"`
}

// SkipRequest moves by a relative number of seconds.
type SkipRequest struct {
	Seconds float64 `json:"seconds"`
}

// RateRequest changes the playback speed multiplier.
type RateRequest struct {
	Rate float64 `json:"rate"`
}

// RestartRequest rewinds to the beginning and plays.
type RestartRequest struct{}

// ScrubRequest toggles scrub mode on the active replay clock.
type ScrubRequest struct {
	Active bool `json:"active"`
}

// StateRequest fetches the clock state without mutating it.
type StateRequest struct{}

// PlaybackResponse carries the clock state after a transport operation.
type PlaybackResponse struct {
	SessionID string         `json:"session_id"`
	State     playback.State `json:"state"`
}

// OverlayRequest fetches the gesture overlay at the current position.
type OverlayRequest struct{}

// OverlayResponse carries the projected overlay touches.
type OverlayResponse struct {
	SessionID string          `json:"session_id"`
	State     playback.State  `json:"state"`
	Touches   []overlay.Touch `json:"touches"`
}

// TimelineRequest fetches the normalized timeline for a session. An empty
// ID targets the active replay.
type TimelineRequest struct {
	ID string `json:"id"`
}

// TimelineResponse carries normalized timeline events.
type TimelineResponse struct {
	SessionID string          `json:"session_id"`
	Events    []session.Event `json:"events"`
}

// DensityRequest fetches the density strip for a session. An empty ID
// targets the active replay.
type DensityRequest struct {
	ID string `json:"id"`
}

// DensityResponse carries the density aggregation.
type DensityResponse struct {
	SessionID string        `json:"session_id"`
	Strip     density.Strip `json:"strip"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// StopRequest shuts the daemon down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
