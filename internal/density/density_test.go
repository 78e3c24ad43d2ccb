package density

import (
	"testing"

	"rejourney/internal/session"
)

func ev(typ string, offsetMillis int64) session.Event {
	return session.Event{Type: typ, Timestamp: offsetMillis}
}

func TestAggregateChannelsNormalizedIndependently(t *testing.T) {
	tl := []session.Event{
		// Bucket 0: two touches. Bucket 1: one touch.
		ev(session.TypeTouch, 0),
		ev(session.TypeGesture, 100),
		ev(session.TypeTouch, 300),
		// Bucket 2: four network requests dominate their own channel only.
		ev(session.TypeNetworkRequest, 500),
		ev(session.TypeNetworkRequest, 510),
		ev(session.TypeNetworkRequest, 520),
		ev(session.TypeNetworkRequest, 530),
	}
	strip := Aggregate(tl, 0, 1.0, 4) // 1s across 4 buckets of 250ms

	if strip.TouchDensity[0] != 1.0 {
		t.Errorf("touch bucket 0 = %v, want 1.0", strip.TouchDensity[0])
	}
	if strip.TouchDensity[1] != 0.5 {
		t.Errorf("touch bucket 1 = %v, want 0.5", strip.TouchDensity[1])
	}
	if strip.APIDensity[2] != 1.0 {
		t.Errorf("api bucket 2 = %v, want 1.0 (independent normalization)", strip.APIDensity[2])
	}
	if strip.TouchDensity[2] != 0 || strip.APIDensity[0] != 0 {
		t.Error("channels leaked into each other")
	}
}

func TestAggregateLastBucketBoundary(t *testing.T) {
	// 10s across 40 buckets = 250ms width; an event at 9.99s lands in
	// bucket 39, not out of range.
	tl := []session.Event{ev(session.TypeTouch, 9_990)}
	strip := Aggregate(tl, 0, 10, 40)
	if strip.TouchDensity[39] != 1.0 {
		t.Errorf("bucket 39 = %v, want the 9.99s event", strip.TouchDensity[39])
	}
}

func TestAggregateDropsOutOfRangeEvents(t *testing.T) {
	tl := []session.Event{
		ev(session.TypeTouch, -200),
		ev(session.TypeTouch, 10_000), // exactly duration: out of [0, duration)
		ev(session.TypeTouch, 12_000),
		ev(session.TypeTouch, 5_000),
	}
	strip := Aggregate(tl, 0, 10, 40)

	placed := 0.0
	for _, v := range strip.TouchDensity {
		placed += v
	}
	if placed != 1.0 {
		t.Errorf("placed density = %v, want only the in-range event", placed)
	}
	// A pre-start event must not truncate into the first bucket.
	if strip.TouchDensity[0] != 0 {
		t.Errorf("bucket 0 density = %v, want 0 for pre-start event", strip.TouchDensity[0])
	}
}

func TestAggregateBucketedNeverExceedsSource(t *testing.T) {
	tl := []session.Event{
		ev(session.TypeTouch, 100),
		ev(session.TypeTouch, 200),
		ev(session.TypeGesture, 5_000),
		ev(session.TypeRageTap, 5_010),
		ev(session.TypeNetworkRequest, 900),
		ev(session.TypeCrash, 950), // neither channel
		ev(session.TypeTouch, 99_000),
	}
	strip := Aggregate(tl, 0, 10, 40)

	sourceTouches := 0
	for _, e := range tl {
		switch e.Type {
		case session.TypeTouch, session.TypeGesture, session.TypeRageTap:
			sourceTouches++
		}
	}

	// Recover bucketed counts is not possible after normalization, but the
	// number of non-zero buckets can never exceed the source event count.
	nonZero := 0
	for _, v := range strip.TouchDensity {
		if v > 0 {
			nonZero++
		}
	}
	if nonZero > sourceTouches {
		t.Errorf("non-zero touch buckets = %d, exceeds %d source events", nonZero, sourceTouches)
	}
}

func TestAggregateRelativeToSessionStart(t *testing.T) {
	start := int64(1_700_000_000_000)
	tl := []session.Event{ev(session.TypeNetworkRequest, start+2_500)}
	strip := Aggregate(tl, start, 10, 40)
	if strip.APIDensity[10] != 1.0 {
		t.Errorf("api bucket 10 = %v, want event at 2.5s in 250ms buckets", strip.APIDensity[10])
	}
}

func TestAggregateDegenerateInputs(t *testing.T) {
	strip := Aggregate(nil, 0, 0, 40)
	if len(strip.TouchDensity) != 40 || len(strip.APIDensity) != 40 {
		t.Errorf("zero duration should still produce sized channels")
	}
	strip = Aggregate(nil, 0, 10, 0)
	if len(strip.TouchDensity) != DefaultBucketCount {
		t.Errorf("bucketCount 0 should fall back to default, got %d", len(strip.TouchDensity))
	}
}
