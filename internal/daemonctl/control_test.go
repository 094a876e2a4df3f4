package daemonctl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"minutes/internal/queue"
	"minutes/internal/testsupport"
)

func TestStopAndTerminateWithoutDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := StopAndTerminate(filepath.Join(t.TempDir(), "none.sock"), cfg, 100*time.Millisecond)
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestWaitForShutdownMissingSocket(t *testing.T) {
	if err := WaitForShutdown(filepath.Join(t.TempDir(), "gone.sock"), 100*time.Millisecond); err != nil {
		t.Fatalf("expected nil for missing socket, got %v", err)
	}
}

func TestForceKillRefusesSelf(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "minutes.pid")
	if err := os.WriteFile(pidPath, []byte("0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ForceKillProcess(pidPath, os.Getpid()); err == nil || !strings.Contains(err.Error(), "refusing") {
		t.Fatalf("expected refusal, got %v", err)
	}
	if _, err := ForceKillProcess(filepath.Join(t.TempDir(), "missing.pid"), 0); err == nil {
		t.Fatal("expected error without pid")
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := Launch("  ", LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable")
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	for _, subject := range []string{"m1", "m2"} {
		if _, err := store.Enqueue(ctx, subject, queue.KindAudioAnalysis); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	snapshot, err := BuildStatusSnapshot(ctx, filepath.Join(t.TempDir(), "none.sock"), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if snapshot.Reachable {
		t.Fatal("expected unreachable daemon")
	}
	if got := snapshot.Status.Workflow.QueueStats["pending"]; got != 2 {
		t.Fatalf("expected 2 pending, got %d", got)
	}
}

func TestBuildStatusSnapshotRequiresConfig(t *testing.T) {
	if _, err := BuildStatusSnapshot(context.Background(), "", nil); err == nil {
		t.Fatal("expected error without config")
	}
}
