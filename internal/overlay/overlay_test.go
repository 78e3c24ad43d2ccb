package overlay

import (
	"testing"

	"rejourney/internal/session"
)

const (
	screenW = 375.0
	screenH = 812.0
)

func touchEvent(ts int64, points ...session.TouchPoint) session.Event {
	return session.Event{Type: session.TypeTouch, Timestamp: ts, Touches: points}
}

func TestProjectVisibilityWindow(t *testing.T) {
	tests := []struct {
		name    string
		ev      session.Event
		now     int64
		visible bool
	}{
		{
			name:    "touch inside window",
			ev:      touchEvent(10_000, session.TouchPoint{X: 100, Y: 100}),
			now:     10_900,
			visible: true,
		},
		{
			name:    "touch expired at 1000ms",
			ev:      touchEvent(10_000, session.TouchPoint{X: 100, Y: 100}),
			now:     11_000,
			visible: false,
		},
		{
			name: "gesture still visible past 1000ms",
			ev: session.Event{
				Type: session.TypeGesture, GestureType: session.GestureSwipe,
				Timestamp: 10_000, Touches: []session.TouchPoint{{X: 100, Y: 100}},
			},
			now:     11_400,
			visible: true,
		},
		{
			name: "gesture expired at 1500ms",
			ev: session.Event{
				Type: session.TypeGesture, GestureType: session.GestureSwipe,
				Timestamp: 10_000, Touches: []session.TouchPoint{{X: 100, Y: 100}},
			},
			now:     11_500,
			visible: false,
		},
		{
			name:    "future events are never visible",
			ev:      touchEvent(10_000, session.TouchPoint{X: 100, Y: 100}),
			now:     9_999,
			visible: false,
		},
		{
			name: "non-touch types are skipped",
			ev: session.Event{
				Type: session.TypeNetworkRequest, Timestamp: 10_000,
				Touches: []session.TouchPoint{{X: 100, Y: 100}},
			},
			now:     10_100,
			visible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project([]session.Event{tt.ev}, nil, tt.now, screenW, screenH)
			if (len(got) == 1) != tt.visible {
				t.Errorf("visible = %v, want %v", len(got) == 1, tt.visible)
			}
		})
	}
}

func TestProjectCoordinateValidation(t *testing.T) {
	tests := []struct {
		name  string
		point session.TouchPoint
		keep  bool
	}{
		{"ordinary point", session.TouchPoint{X: 100, Y: 200}, true},
		{"near-zero noise", session.TouchPoint{X: 2, Y: 2}, false},
		{"exactly at the floor", session.TouchPoint{X: 5, Y: 100}, false},
		{"just above the floor", session.TouchPoint{X: 5.5, Y: 100}, true},
		{"x beyond triple screen width", session.TouchPoint{X: screenW * 3, Y: 100}, false},
		{"y beyond triple screen height", session.TouchPoint{X: 100, Y: screenH * 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := touchEvent(1_000, tt.point)
			got := Project([]session.Event{ev}, nil, 1_100, screenW, screenH)
			if (len(got) == 1) != tt.keep {
				t.Errorf("kept = %v, want %v", len(got) == 1, tt.keep)
			}
		})
	}
}

func TestProjectDropsEventWithNoValidTouches(t *testing.T) {
	ev := touchEvent(1_000, session.TouchPoint{X: 1, Y: 1}, session.TouchPoint{X: 3, Y: 2})
	got := Project([]session.Event{ev}, nil, 1_100, screenW, screenH)
	if len(got) != 0 {
		t.Fatalf("projected %d touches, want event dropped entirely", len(got))
	}
}

func TestProjectNeverEmitsEmptyTouches(t *testing.T) {
	events := []session.Event{
		touchEvent(1_000, session.TouchPoint{X: 1, Y: 1}),
		touchEvent(1_050, session.TouchPoint{X: 100, Y: 100}, session.TouchPoint{X: 2, Y: 2}),
		touchEvent(1_080),
	}
	for _, touch := range Project(events, nil, 1_100, screenW, screenH) {
		if len(touch.Touches) == 0 {
			t.Fatal("projected a Touch with zero touch points")
		}
		if touch.TouchCount != len(touch.Touches) {
			t.Errorf("touchCount = %d, want %d", touch.TouchCount, len(touch.Touches))
		}
	}
}

func TestProjectRageTapRetagging(t *testing.T) {
	ev := session.Event{
		Type: session.TypeGesture, GestureType: session.GestureTap,
		Timestamp: 5_000, Touches: []session.TouchPoint{{X: 100, Y: 100}},
	}

	got := Project([]session.Event{ev}, []int64{5_080}, 5_100, screenW, screenH)
	if len(got) != 1 {
		t.Fatalf("projected %d, want 1", len(got))
	}
	if got[0].GestureType != session.GestureRageTap {
		t.Errorf("gestureType = %q, want rage_tap within 100ms of a group", got[0].GestureType)
	}

	got = Project([]session.Event{ev}, []int64{5_200}, 5_100, screenW, screenH)
	if got[0].GestureType != session.GestureTap {
		t.Errorf("gestureType = %q, want original tap beyond 100ms", got[0].GestureType)
	}
}

func TestProjectCarriesMotionProperties(t *testing.T) {
	ev := session.Event{
		Type:        session.TypeGesture,
		GestureType: session.GestureSwipe,
		Timestamp:   2_000,
		TargetLabel: "checkout_button",
		Touches:     []session.TouchPoint{{X: 150, Y: 300, Force: 0.8}},
		Properties:  map[string]any{"duration": 0.25, "velocity": 840.5, "maxForce": 1.2},
	}
	got := Project([]session.Event{ev}, nil, 2_100, screenW, screenH)
	if len(got) != 1 {
		t.Fatalf("projected %d, want 1", len(got))
	}
	touch := got[0]
	if touch.Duration != 0.25 || touch.Velocity != 840.5 || touch.MaxForce != 1.2 {
		t.Errorf("motion properties = %v/%v/%v, want 0.25/840.5/1.2", touch.Duration, touch.Velocity, touch.MaxForce)
	}
	if touch.TargetLabel != "checkout_button" {
		t.Errorf("targetLabel = %q", touch.TargetLabel)
	}
	if touch.Touches[0].Force != 0.8 || touch.Touches[0].Timestamp != 2_000 {
		t.Errorf("point = %+v, want force and timestamp carried", touch.Touches[0])
	}
}
