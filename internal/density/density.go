// Package density buckets the session timeline into fixed-width time bins
// per event category for the visual density strip above the scrubber.
package density

import (
	"math"

	"rejourney/internal/session"
)

// DefaultBucketCount matches the width of the density strip rendering.
const DefaultBucketCount = 40

// Strip holds one normalized density channel per event category. Each
// channel is normalized independently by its own maximum, so a busy API
// channel does not flatten the touch channel.
type Strip struct {
	TouchDensity []float64 `json:"touchDensity"`
	APIDensity   []float64 `json:"apiDensity"`
}

// Aggregate buckets the timeline into bucketCount bins across the playback
// duration. Events whose computed bucket falls outside [0, bucketCount) are
// dropped rather than clamped; an event past the estimated duration has no
// honest place on the strip. bucketCount <= 0 falls back to
// DefaultBucketCount.
func Aggregate(timeline []session.Event, sessionStart int64, durationSeconds float64, bucketCount int) Strip {
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}
	strip := Strip{
		TouchDensity: make([]float64, bucketCount),
		APIDensity:   make([]float64, bucketCount),
	}
	if durationSeconds <= 0 {
		return strip
	}

	bucketMillis := durationSeconds * 1000 / float64(bucketCount)
	touchCounts := make([]int, bucketCount)
	apiCounts := make([]int, bucketCount)

	for _, ev := range timeline {
		offset := float64(ev.Timestamp - sessionStart)
		// Floor keeps small negative offsets in a negative bucket instead of
		// truncating them into bucket 0.
		bucket := int(math.Floor(offset / bucketMillis))
		if bucket < 0 || bucket >= bucketCount {
			continue
		}
		switch ev.Type {
		case session.TypeTouch, session.TypeGesture, session.TypeRageTap:
			touchCounts[bucket]++
		case session.TypeNetworkRequest:
			apiCounts[bucket]++
		}
	}

	normalize(touchCounts, strip.TouchDensity)
	normalize(apiCounts, strip.APIDensity)
	return strip
}

func normalize(counts []int, out []float64) {
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	if max == 0 {
		return
	}
	for i, c := range counts {
		out[i] = float64(c) / float64(max)
	}
}
