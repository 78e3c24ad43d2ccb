package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rejourney/internal/daemon"
	"rejourney/internal/ipc"
	"rejourney/internal/logging"
	"rejourney/internal/testsupport"
)

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	srv, err := ipc.NewServer(ctx, cfg.Paths.Socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(cfg.Paths.Socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.SessionCount != 0 {
		t.Fatalf("expected empty archive, got %d sessions", status.SessionCount)
	}

	sess := testsupport.NewSession(t, "ipc-sess", 1_700_000_000_000, 8)
	testsupport.TapBurst(sess, 1_700_000_002_000, 150, 3, 200, 400)
	payload, err := sess.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	ingestResp, err := client.SessionIngest(payload)
	if err != nil {
		t.Fatalf("SessionIngest failed: %v", err)
	}
	if ingestResp.Summary.ID != "ipc-sess" {
		t.Fatalf("ingest summary ID = %q, want ipc-sess", ingestResp.Summary.ID)
	}
	if ingestResp.Summary.RageTapCount != 1 {
		t.Fatalf("RageTapCount = %d, want 1", ingestResp.Summary.RageTapCount)
	}

	listResp, err := client.SessionList()
	if err != nil {
		t.Fatalf("SessionList failed: %v", err)
	}
	if len(listResp.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(listResp.Sessions))
	}

	loadResp, err := client.Load("ipc-sess")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loadResp.SessionID != "ipc-sess" || loadResp.State.Playing {
		t.Fatalf("unexpected load response: %+v", loadResp)
	}

	playResp, err := client.Play()
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !playResp.State.Playing {
		t.Fatal("expected playback to start")
	}

	seekResp, err := client.Seek(3)
	if err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if seekResp.State.CurrentTime < 3 {
		t.Fatalf("CurrentTime after seek = %v, want >= 3", seekResp.State.CurrentTime)
	}

	if _, err := client.SetRate(0); err == nil {
		t.Fatal("expected SetRate(0) to fail")
	}

	timelineResp, err := client.Timeline("")
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if len(timelineResp.Events) != 4 {
		t.Fatalf("timeline events = %d, want 4", len(timelineResp.Events))
	}

	densityResp, err := client.Density("ipc-sess")
	if err != nil {
		t.Fatalf("Density failed: %v", err)
	}
	if len(densityResp.Strip.TouchDensity) != cfg.Density.BucketCount {
		t.Fatalf("density buckets = %d, want %d", len(densityResp.Strip.TouchDensity), cfg.Density.BucketCount)
	}

	if _, err := client.Overlay(); err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}

	logPath := filepath.Join(cfg.Paths.LogDir, "rejourney.log")
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	unloadResp, err := client.Unload()
	if err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if !unloadResp.Unloaded {
		t.Fatal("expected unload to report success")
	}
	if _, err := client.State(); err == nil {
		t.Fatal("expected State to fail after unload")
	}

	deleteResp, err := client.SessionDelete("ipc-sess")
	if err != nil {
		t.Fatalf("SessionDelete failed: %v", err)
	}
	if !deleteResp.Deleted {
		t.Fatal("expected delete to report success")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
