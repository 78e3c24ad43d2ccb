// Package frameindex maintains the sorted screenshot index the player scrubs
// through. Lookup runs on every animation tick and every drag of the
// scrubber, so it is a binary search over precomputed relative offsets, never
// a linear scan; sessions can carry thousands of frames.
package frameindex

import (
	"sort"

	"rejourney/internal/session"
)

// Index is the sorted frame array with precomputed relative-time offsets.
// It is immutable after Build.
type Index struct {
	frames []session.Frame
}

// Build sorts the raw frames ascending by timestamp (stable, so duplicate
// timestamps keep their upload order), annotates each with relative time in
// seconds since session start, and re-indexes them densely from zero.
func Build(raw []session.Frame, sessionStart int64) *Index {
	frames := make([]session.Frame, len(raw))
	copy(frames, raw)
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Timestamp < frames[j].Timestamp
	})
	for i := range frames {
		frames[i].Index = i
		frames[i].RelativeTime = float64(frames[i].Timestamp-sessionStart) / 1000
	}
	return &Index{frames: frames}
}

// Len returns the number of frames in the index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.frames)
}

// Frames returns the sorted, annotated frame slice. Callers must not mutate it.
func (ix *Index) Frames() []session.Frame {
	if ix == nil {
		return nil
	}
	return ix.frames
}

// At returns the frame at position i.
func (ix *Index) At(i int) session.Frame {
	return ix.frames[i]
}

// AtOrBefore returns the index of the rightmost frame whose relative time is
// at or before t seconds, or 0 when t precedes the first frame. The result
// is undefined for an empty index; callers gate on Len first.
func (ix *Index) AtOrBefore(t float64) int {
	if ix == nil || len(ix.frames) == 0 {
		return 0
	}
	// First frame strictly after t; the answer sits just before it.
	n := sort.Search(len(ix.frames), func(i int) bool {
		return ix.frames[i].RelativeTime > t
	})
	if n == 0 {
		return 0
	}
	return n - 1
}
