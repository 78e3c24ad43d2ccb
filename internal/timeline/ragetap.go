package timeline

import (
	"math"

	"rejourney/internal/session"
)

// Rage-tap clustering thresholds: at least minTaps taps inside windowMillis,
// each within radiusPixels of the anchor tap's first touch point.
const (
	rageTapWindowMillis = 1500
	rageTapRadiusPixels = 50.0
	rageTapMinTaps      = 3
)

// RageTapProximityMillis is how close (in ms) an overlay event must be to a
// detected rage-tap group to inherit the rage_tap gesture tag.
const RageTapProximityMillis = 100

// DetectRageTaps scans tap and double-tap gestures in original order and
// emits one synthetic rage_tap event per cluster of at least three taps
// landing within 1500ms and 50px of the cluster's first tap. Groups never
// overlap: once a cluster is found the scan resumes past its time window.
// The detection is deterministic and idempotent.
//
// A tap with no recorded coordinates defaults to the origin, so clusters of
// coordinate-less taps can match each other spuriously. The capture source
// behaves the same way; see the open questions in DESIGN.md.
func DetectRageTaps(events []session.Event) []session.Event {
	var taps []session.Event
	for _, ev := range events {
		if ev.IsTap() {
			taps = append(taps, ev)
		}
	}

	var groups []session.Event
	i := 0
	for i < len(taps) {
		anchor := taps[i].FirstTouch()
		count := 0
		j := i
		for j < len(taps) && taps[j].Timestamp-taps[i].Timestamp <= rageTapWindowMillis {
			if touchDistance(taps[j].FirstTouch(), anchor) <= rageTapRadiusPixels {
				count++
			}
			j++
		}
		if count >= rageTapMinTaps {
			groups = append(groups, rageTapEvent(taps[i]))
			i = j
		} else {
			i++
		}
	}
	return groups
}

// rageTapEvent builds the synthetic group event from the cluster's anchor tap.
func rageTapEvent(anchor session.Event) session.Event {
	ev := anchor
	ev.Type = session.TypeRageTap
	ev.GestureType = session.GestureRageTap
	ev.FrustrationKind = session.FrustrationRageTap
	return ev
}

func touchDistance(a, b session.TouchPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
