// Package overlay projects the touch markers visible at one instant of
// playback. Projection is a pure function of the timeline, the clock value,
// and the device geometry; it is recomputed synchronously on every tick and
// never holds incremental state.
package overlay

import (
	"strconv"

	"rejourney/internal/session"
	"rejourney/internal/timeline"
)

// Visibility windows behind the playback cursor. Swipes and scrolls stay
// visible longer than plain touches.
const (
	gestureMaxAgeMillis = 1500
	touchMaxAgeMillis   = 1000
)

// Coordinate bounds: discard near-zero noise and wildly out-of-range values
// from device-reporting bugs.
const (
	minCoordinate   = 5.0
	screenBoundMult = 3.0
)

// Point is one validated touch coordinate with the timestamp of its event.
type Point struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
	Force     float64 `json:"force,omitempty"`
}

// Touch is a derived, ephemeral overlay marker. It is recomputed every tick
// and never persisted.
type Touch struct {
	ID          string  `json:"id"`
	Timestamp   int64   `json:"timestamp"`
	GestureType string  `json:"gestureType"`
	Touches     []Point `json:"touches"`
	TargetLabel string  `json:"targetLabel,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Velocity    float64 `json:"velocity,omitempty"`
	MaxForce    float64 `json:"maxForce,omitempty"`
	TouchCount  int     `json:"touchCount"`
}

// Project selects the touch and gesture events visible in the trailing
// window behind nowMillis, validates their coordinates against the screen
// geometry, and re-tags events adjacent to a rage-tap group. Events left
// with zero valid touch points are dropped entirely; Project never emits a
// Touch with an empty Touches slice.
//
// rageTimestamps are the timestamps of detected rage-tap groups; an event
// within timeline.RageTapProximityMillis of any of them inherits the
// rage_tap gesture tag so the overlay matches the timeline markers.
func Project(events []session.Event, rageTimestamps []int64, nowMillis int64, screenW, screenH float64) []Touch {
	var out []Touch
	for i, ev := range events {
		if ev.Type != session.TypeTouch && ev.Type != session.TypeGesture {
			continue
		}
		age := nowMillis - ev.Timestamp
		if age < 0 || age >= maxAge(ev) {
			continue
		}

		points := validPoints(ev, screenW, screenH)
		if len(points) == 0 {
			continue
		}

		gesture := ev.GestureType
		if nearRageTap(ev.Timestamp, rageTimestamps) {
			gesture = session.GestureRageTap
		}

		out = append(out, Touch{
			ID:          strconv.FormatInt(ev.Timestamp, 10) + "-" + strconv.Itoa(i),
			Timestamp:   ev.Timestamp,
			GestureType: gesture,
			Touches:     points,
			TargetLabel: ev.TargetLabel,
			Duration:    floatProperty(ev, "duration"),
			Velocity:    floatProperty(ev, "velocity"),
			MaxForce:    floatProperty(ev, "maxForce"),
			TouchCount:  len(points),
		})
	}
	return out
}

func maxAge(ev session.Event) int64 {
	if ev.Type == session.TypeGesture {
		return gestureMaxAgeMillis
	}
	return touchMaxAgeMillis
}

func validPoints(ev session.Event, screenW, screenH float64) []Point {
	var points []Point
	for _, tp := range ev.Touches {
		if tp.X <= minCoordinate || tp.X >= screenW*screenBoundMult {
			continue
		}
		if tp.Y <= minCoordinate || tp.Y >= screenH*screenBoundMult {
			continue
		}
		points = append(points, Point{X: tp.X, Y: tp.Y, Timestamp: ev.Timestamp, Force: tp.Force})
	}
	return points
}

func nearRageTap(ts int64, rageTimestamps []int64) bool {
	for _, rt := range rageTimestamps {
		delta := ts - rt
		if delta < 0 {
			delta = -delta
		}
		if delta <= timeline.RageTapProximityMillis {
			return true
		}
	}
	return false
}

func floatProperty(ev session.Event, key string) float64 {
	if ev.Properties == nil {
		return 0
	}
	switch v := ev.Properties[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
