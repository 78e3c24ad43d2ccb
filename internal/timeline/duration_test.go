package timeline

import (
	"testing"

	"rejourney/internal/session"
)

func TestEstimateDurationPlayableWins(t *testing.T) {
	sess := &session.Session{
		PlayableDuration: 42.5,
		StartTime:        1_700_000_000_000,
		EndTime:          1_700_000_900_000, // 900s span would otherwise win
		Stats:            session.Stats{Duration: "120"},
	}
	if got := EstimateDuration(sess, nil, 10); got != 42.5 {
		t.Errorf("duration = %v, want playableDuration exactly", got)
	}
}

func TestEstimateDurationTakesMaxCandidate(t *testing.T) {
	start := int64(1_700_000_000_000)
	sess := &session.Session{
		StartTime: start,
		EndTime:   start + 10_000, // 10.0s
		Frames: []session.Frame{
			{Timestamp: start + 11_800, URL: "f0"}, // 11.8s + 0.5s buffer = 12.3s
		},
	}
	tl := []session.Event{
		{Type: session.TypeTouch, Timestamp: start + 15_700}, // 15.7s
	}
	if got := EstimateDuration(sess, tl, 0); got != 15.7 {
		t.Errorf("duration = %v, want max candidate 15.7", got)
	}
}

func TestEstimateDurationCandidates(t *testing.T) {
	start := int64(1_700_000_000_000)
	tests := []struct {
		name     string
		sess     *session.Session
		timeline []session.Event
		fallback float64
		want     float64
	}{
		{
			name: "screenshot span plus buffer",
			sess: &session.Session{
				StartTime: start,
				Frames:    []session.Frame{{Timestamp: start + 8_000}},
			},
			want: 8.5,
		},
		{
			name: "end time minus background time",
			sess: &session.Session{
				StartTime:      start,
				EndTime:        start + 30_000,
				BackgroundTime: 12,
			},
			want: 18,
		},
		{
			name: "stats duration string",
			sess: &session.Session{
				StartTime: start,
				Stats:     session.Stats{Duration: " 27.25 "},
			},
			want: 27.25,
		},
		{
			name: "unparseable stats ignored",
			sess: &session.Session{
				StartTime: start,
				EndTime:   start + 5_000,
				Stats:     session.Stats{Duration: "n/a"},
			},
			want: 5,
		},
		{
			name:     "fallback when nothing is positive",
			sess:     &session.Session{},
			fallback: 33,
			want:     33,
		},
		{
			name: "default fallback when everything is unusable",
			sess: &session.Session{},
			want: DefaultFallbackSeconds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateDuration(tt.sess, tt.timeline, tt.fallback); got != tt.want {
				t.Errorf("duration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateDurationUnsortedFrames(t *testing.T) {
	start := int64(1_700_000_000_000)
	sess := &session.Session{
		StartTime: start,
		Frames: []session.Frame{
			{Timestamp: start + 9_000},
			{Timestamp: start + 2_000},
			{Timestamp: start + 6_000},
		},
	}
	if got := EstimateDuration(sess, nil, 0); got != 9.5 {
		t.Errorf("duration = %v, want 9.5 from latest frame", got)
	}
}
