package sessionstore_test

import (
	"context"
	"errors"
	"testing"

	"rejourney/internal/session"
	"rejourney/internal/sessionstore"
	"rejourney/internal/testsupport"
)

func TestIngestAssignsIDAndDerivesCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	sess := testsupport.NewSession(t, "", 1_700_000_000_000, 5)
	testsupport.TapBurst(sess, 1_700_000_001_000, 200, 4, 120, 300)

	stored := testsupport.IngestSession(t, store, sess)
	if stored.ID == "" {
		t.Fatal("expected ingest to assign a session ID")
	}

	sm, err := store.Describe(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if sm.FrameCount != 5 {
		t.Fatalf("FrameCount = %d, want 5", sm.FrameCount)
	}
	// Four taps within the window plus the synthesized rage tap marker.
	if sm.EventCount != 5 {
		t.Fatalf("EventCount = %d, want 5", sm.EventCount)
	}
	if sm.RageTapCount != 1 {
		t.Fatalf("RageTapCount = %d, want 1", sm.RageTapCount)
	}
	if sm.DurationSeconds <= 0 {
		t.Fatalf("DurationSeconds = %v, want > 0", sm.DurationSeconds)
	}
}

func TestGetRoundTripsPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	sess := testsupport.NewSession(t, "sess-roundtrip", 1_700_000_000_000, 3)
	sess.Events = append(sess.Events, session.Event{
		Type:      session.TypeTouch,
		Timestamp: 1_700_000_000_500,
		Touches:   []session.TouchPoint{{X: 10, Y: 20}},
	})
	testsupport.IngestSession(t, store, sess)

	got, err := store.Get(context.Background(), "sess-roundtrip")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != sess.ID || got.StartTime != sess.StartTime {
		t.Fatalf("roundtrip mismatch: got %q/%d want %q/%d", got.ID, got.StartTime, sess.ID, sess.StartTime)
	}
	if len(got.Frames) != 3 {
		t.Fatalf("len(Frames) = %d, want 3", len(got.Frames))
	}
	if len(got.Events) != 1 || got.Events[0].Touches[0].X != 10 {
		t.Fatalf("events did not survive roundtrip: %+v", got.Events)
	}
	if got.Device.ScreenWidth != 390 {
		t.Fatalf("Device.ScreenWidth = %v, want 390", got.Device.ScreenWidth)
	}
}

func TestIngestReplacesExistingSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	first := testsupport.NewSession(t, "sess-dup", 1_700_000_000_000, 2)
	testsupport.IngestSession(t, store, first)

	second := testsupport.NewSession(t, "sess-dup", 1_700_000_000_000, 6)
	testsupport.IngestSession(t, store, second)

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count = %d, want 1", count)
	}

	sm, err := store.Describe(context.Background(), "sess-dup")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if sm.FrameCount != 6 {
		t.Fatalf("FrameCount after replace = %d, want 6", sm.FrameCount)
	}
}

func TestListOrdersByStartTimeDescending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.IngestSession(t, store, testsupport.NewSession(t, "older", 1_700_000_000_000, 1))
	testsupport.IngestSession(t, store, testsupport.NewSession(t, "newer", 1_700_000_500_000, 1))
	testsupport.IngestSession(t, store, testsupport.NewSession(t, "middle", 1_700_000_250_000, 1))

	summaries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("len(summaries) = %d, want 3", len(summaries))
	}
	wantOrder := []string{"newer", "middle", "older"}
	for i, want := range wantOrder {
		if summaries[i].ID != want {
			t.Fatalf("summaries[%d].ID = %q, want %q", i, summaries[i].ID, want)
		}
	}
}

func TestMissingSessionReturnsNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Get(ctx, "absent"); !errors.Is(err, sessionstore.ErrSessionNotFound) {
		t.Fatalf("Get error = %v, want ErrSessionNotFound", err)
	}
	if _, err := store.Describe(ctx, "absent"); !errors.Is(err, sessionstore.ErrSessionNotFound) {
		t.Fatalf("Describe error = %v, want ErrSessionNotFound", err)
	}
	if err := store.Delete(ctx, "absent"); !errors.Is(err, sessionstore.ErrSessionNotFound) {
		t.Fatalf("Delete error = %v, want ErrSessionNotFound", err)
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.IngestSession(t, store, testsupport.NewSession(t, "doomed", 1_700_000_000_000, 1))
	if err := store.Delete(ctx, "doomed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "doomed"); !errors.Is(err, sessionstore.ErrSessionNotFound) {
		t.Fatalf("Get after delete = %v, want ErrSessionNotFound", err)
	}
}
