package session

import (
	"encoding/json"
)

// Event type constants used across the replay engine.
const (
	TypeTouch          = "touch"
	TypeGesture        = "gesture"
	TypeNetworkRequest = "network_request"
	TypeCrash          = "crash"
	TypeRageTap        = "rage_tap"
)

// Gesture classifications reported by the capture SDKs.
const (
	GestureTap       = "tap"
	GestureDoubleTap = "double_tap"
	GestureLongPress = "long_press"
	GestureSwipe     = "swipe"
	GestureScroll    = "scroll"
	GestureRageTap   = "rage_tap"
)

// FrustrationRageTap marks synthetic events emitted by rage-tap detection.
const FrustrationRageTap = "rage_tap"

// TouchPoint is a single validated touch coordinate in device-independent pixels.
type TouchPoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Force float64 `json:"force,omitempty"`
}

// Event is one entry on the session timeline. Timestamp is absolute epoch
// milliseconds from the device clock, not relative to session start.
type Event struct {
	Type            string         `json:"type"`
	Name            string         `json:"name,omitempty"`
	Timestamp       int64          `json:"timestamp"`
	Properties      map[string]any `json:"properties,omitempty"`
	GestureType     string         `json:"gestureType,omitempty"`
	FrustrationKind string         `json:"frustrationKind,omitempty"`
	TargetLabel     string         `json:"targetLabel,omitempty"`
	Touches         []TouchPoint   `json:"touches,omitempty"`
}

// eventWire mirrors Event but leaves touches raw so decode can absorb the
// platform-dependent shapes before they reach consumers.
type eventWire struct {
	Type            string          `json:"type"`
	Name            string          `json:"name"`
	Timestamp       int64           `json:"timestamp"`
	Properties      map[string]any  `json:"properties"`
	GestureType     string          `json:"gestureType"`
	FrustrationKind string          `json:"frustrationKind"`
	TargetLabel     string          `json:"targetLabel"`
	Touches         json.RawMessage `json:"touches"`
}

// UnmarshalJSON decodes an event and normalizes the touches payload, which
// may arrive as an array of points, a single point object, or be missing.
func (e *Event) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	e.Type = wire.Type
	e.Name = wire.Name
	e.Timestamp = wire.Timestamp
	e.Properties = wire.Properties
	e.GestureType = wire.GestureType
	e.FrustrationKind = wire.FrustrationKind
	e.TargetLabel = wire.TargetLabel
	e.Touches = normalizeTouches(wire.Touches)
	return nil
}

// normalizeTouches converts the dynamic wire shape into a fixed point slice.
// Unrecognized payloads normalize to nil (the explicit "no touch data" case)
// rather than erroring, since a single corrupt event must not break replay.
func normalizeTouches(raw json.RawMessage) []TouchPoint {
	if len(raw) == 0 {
		return nil
	}
	var points []TouchPoint
	if err := json.Unmarshal(raw, &points); err == nil {
		if len(points) == 0 {
			return nil
		}
		return points
	}
	var single TouchPoint
	if err := json.Unmarshal(raw, &single); err == nil {
		return []TouchPoint{single}
	}
	return nil
}

// FirstTouch returns the first touch point, defaulting to the origin when the
// event carries no coordinates. Callers that care about the difference should
// check HasTouches first.
func (e Event) FirstTouch() TouchPoint {
	if len(e.Touches) == 0 {
		return TouchPoint{}
	}
	return e.Touches[0]
}

// HasTouches reports whether the event carries any touch coordinates.
func (e Event) HasTouches() bool {
	return len(e.Touches) > 0
}

// IsTap reports whether the event is a tap-like gesture eligible for
// rage-tap clustering.
func (e Event) IsTap() bool {
	return e.GestureType == GestureTap || e.GestureType == GestureDoubleTap
}

// NetworkRequest is a recorded HTTP call from the session. Duration is
// milliseconds. Either URL or URLPath may be empty depending on SDK version.
type NetworkRequest struct {
	Timestamp        int64   `json:"timestamp"`
	Method           string  `json:"method"`
	URL              string  `json:"url,omitempty"`
	URLPath          string  `json:"urlPath,omitempty"`
	StatusCode       int     `json:"statusCode"`
	Duration         float64 `json:"duration"`
	Success          bool    `json:"success"`
	RequestBodySize  int64   `json:"requestBodySize,omitempty"`
	ResponseBodySize int64   `json:"responseBodySize,omitempty"`
}

// Path returns the best available URL identifier for the request.
func (r NetworkRequest) Path() string {
	if r.URLPath != "" {
		return r.URLPath
	}
	return r.URL
}

// CrashReport is an unhandled exception captured during the session.
type CrashReport struct {
	Timestamp     int64  `json:"timestamp"`
	ExceptionName string `json:"exceptionName"`
	Reason        string `json:"reason"`
	CrashID       string `json:"crashId"`
}

// Frame is one screenshot standing in for a span of real time. RelativeTime
// (seconds since session start) and the dense Index are assigned by
// frameindex.Build after sorting; raw payloads carry only Timestamp and URL.
type Frame struct {
	Timestamp    int64   `json:"timestamp"`
	URL          string  `json:"url"`
	Index        int     `json:"index"`
	RelativeTime float64 `json:"relativeTime"`
}

// DeviceInfo carries the screen geometry used to validate touch coordinates.
type DeviceInfo struct {
	ScreenWidth  float64 `json:"screenWidth"`
	ScreenHeight float64 `json:"screenHeight"`
}

// Stats is backend-computed session metadata. Duration arrives as a string
// and is only one of several duration candidates, so it stays unparsed here.
type Stats struct {
	Duration string `json:"duration"`
}

// Session is the full recorded payload for one app session.
type Session struct {
	ID               string           `json:"id"`
	StartTime        int64            `json:"startTime"`
	EndTime          int64            `json:"endTime,omitempty"`
	BackgroundTime   float64          `json:"backgroundTime,omitempty"`
	PlayableDuration float64          `json:"playableDuration,omitempty"`
	Stats            Stats            `json:"stats,omitempty"`
	Events           []Event          `json:"events,omitempty"`
	NetworkRequests  []NetworkRequest `json:"networkRequests,omitempty"`
	Crashes          []CrashReport    `json:"crashes,omitempty"`
	Frames           []Frame          `json:"screenshotFrames,omitempty"`
	Device           DeviceInfo       `json:"deviceInfo"`
}

// Parse decodes a raw session payload.
func Parse(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Encode serialises the session payload for storage.
func (s *Session) Encode() ([]byte, error) {
	return json.Marshal(s)
}
