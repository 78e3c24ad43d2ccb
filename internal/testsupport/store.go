package testsupport

import (
	"context"
	"testing"

	"rejourney/internal/config"
	"rejourney/internal/session"
	"rejourney/internal/sessionstore"
)

// MustOpenStore opens a sessionstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sessionstore.Store {
	t.Helper()

	store, err := sessionstore.Open(cfg)
	if err != nil {
		t.Fatalf("sessionstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// IngestSession stores the provided session using the store under test.
func IngestSession(t testing.TB, store *sessionstore.Store, sess *session.Session) *session.Session {
	t.Helper()

	stored, err := store.Ingest(context.Background(), sess)
	if err != nil {
		t.Fatalf("store.Ingest: %v", err)
	}
	return stored
}
