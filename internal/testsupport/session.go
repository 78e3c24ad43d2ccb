package testsupport

import (
	"fmt"
	"testing"

	"rejourney/internal/session"
)

// NewSession builds a minimal playable session fixture. It carries startMillis
// as the session start and frameCount screenshot frames spaced one second
// apart, which is enough for the clock, frame index, and store to operate on.
func NewSession(t testing.TB, id string, startMillis int64, frameCount int) *session.Session {
	t.Helper()

	sess := &session.Session{
		ID:        id,
		StartTime: startMillis,
		Device: session.DeviceInfo{
			ScreenWidth:  390,
			ScreenHeight: 844,
		},
	}
	for i := 0; i < frameCount; i++ {
		sess.Frames = append(sess.Frames, session.Frame{
			Timestamp: startMillis + int64(i)*1000,
			URL:       fmt.Sprintf("https://frames.example/%s/%d.jpg", id, i),
		})
	}
	if frameCount > 0 {
		sess.EndTime = startMillis + int64(frameCount-1)*1000
	}
	return sess
}

// TapBurst appends count tap events at the given coordinates, spaced
// spacingMillis apart starting at startMillis. Useful for exercising
// rage tap detection in fixtures.
func TapBurst(sess *session.Session, startMillis int64, spacingMillis int64, count int, x, y float64) {
	for i := 0; i < count; i++ {
		sess.Events = append(sess.Events, session.Event{
			Type:        session.TypeGesture,
			GestureType: session.GestureTap,
			Timestamp:   startMillis + int64(i)*spacingMillis,
			Touches:     []session.TouchPoint{{X: x, Y: y}},
		})
	}
}
