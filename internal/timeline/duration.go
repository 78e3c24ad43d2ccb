package timeline

import (
	"strconv"
	"strings"

	"rejourney/internal/session"
)

// DefaultFallbackSeconds is used when no duration signal is available at all.
const DefaultFallbackSeconds = 60.0

// frameTailBufferSeconds pads the screenshot-derived candidate so the last
// frame is not cut off at the instant it appears.
const frameTailBufferSeconds = 0.5

// EstimateDuration derives the total playback duration in seconds. A positive
// backend playableDuration is authoritative (it already excludes backgrounded
// time) and is returned exactly. Otherwise every remaining signal becomes a
// candidate and the maximum wins, never the first available: any one signal
// can under-report, and clipping a recorded frame or event off the timeline
// is worse than showing trailing dead time.
//
// timeline must be the normalized event stream for the session; it supplies
// the last-event candidate. When no candidate is positive the provided
// fallback is returned, or DefaultFallbackSeconds if that too is unusable.
func EstimateDuration(sess *session.Session, timeline []session.Event, fallback float64) float64 {
	if sess != nil && sess.PlayableDuration > 0 {
		return sess.PlayableDuration
	}

	best := 0.0
	consider := func(candidate float64) {
		if candidate > best {
			best = candidate
		}
	}

	if sess != nil {
		if span := frameSpanSeconds(sess); span > 0 {
			consider(span + frameTailBufferSeconds)
		}
		if sess.EndTime > sess.StartTime && sess.StartTime > 0 {
			span := float64(sess.EndTime-sess.StartTime) / 1000
			if sess.BackgroundTime > 0 {
				span -= sess.BackgroundTime
			}
			consider(span)
		}
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(sess.Stats.Duration), 64); err == nil {
			consider(parsed)
		}
		if len(timeline) > 0 && sess.StartTime > 0 {
			last := timeline[len(timeline)-1].Timestamp
			consider(float64(last-sess.StartTime) / 1000)
		}
	}

	if best > 0 {
		return best
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultFallbackSeconds
}

// frameSpanSeconds returns the span from session start to the latest
// screenshot, in seconds. Raw frame payloads are not guaranteed sorted.
func frameSpanSeconds(sess *session.Session) float64 {
	if len(sess.Frames) == 0 || sess.StartTime <= 0 {
		return 0
	}
	var last int64
	for _, frame := range sess.Frames {
		if frame.Timestamp > last {
			last = frame.Timestamp
		}
	}
	return float64(last-sess.StartTime) / 1000
}
