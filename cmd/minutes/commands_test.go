package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"minutes/internal/api"
	"minutes/internal/queue"
)

func TestMeetingAnalyzeFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"person", "add", "Ana Lima", "--role", "PM"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("person add: %v", err)
	}
	requireContains(t, out, "Added Ana Lima")

	transcript := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(transcript, []byte("Ana: I will send the recap."), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	out, _, err = runCLI(t, []string{
		"meeting", "add", "Weekly sync",
		"--held-at", "2026-03-02",
		"--transcript", transcript,
		"--participant", "Ana Lima:PM",
		"--participant", "Bruno",
		"--analyze",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("meeting add: %v", err)
	}
	meetingID := lastField(t, out, "Recorded meeting")
	jobID := lastField(t, out, "Queued job")

	waitFor(t, 3*time.Second, func() bool {
		job, err := env.store.GetByID(context.Background(), jobID)
		return err == nil && job != nil && job.Status == queue.StatusCompleted
	})

	out, _, err = runCLI(t, []string{"meeting", "show", meetingID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("meeting show: %v", err)
	}
	requireContains(t, out, "Reviewed Weekly sync")
	requireContains(t, out, "Ship on Friday")
	requireContains(t, out, "Send recap")
	requireContains(t, out, "Ana Lima")
	requireContains(t, out, "completed")

	out, _, err = runCLI(t, []string{"meeting", "show", meetingID, "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("meeting show --json: %v", err)
	}
	var meeting api.Meeting
	if err := json.Unmarshal([]byte(out), &meeting); err != nil {
		t.Fatalf("decode meeting json: %v", err)
	}
	if !meeting.Processed || len(meeting.Tasks) != 1 || meeting.Tasks[0].AssigneeName != "Ana Lima" {
		t.Fatalf("unexpected meeting payload: %+v", meeting)
	}
	if len(meeting.Participants) != 2 || meeting.Participants[1].Role != "" {
		t.Fatalf("unexpected participants: %+v", meeting.Participants)
	}

	out, _, err = runCLI(t, []string{"meeting", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("meeting list: %v", err)
	}
	requireContains(t, out, "Weekly sync")
	requireContains(t, out, "yes")
}

func TestQueueCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")

	out, _, err = runCLI(t, []string{"meeting", "add", "Retro"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("meeting add: %v", err)
	}
	meetingID := lastField(t, out, "Recorded meeting")

	if _, _, err := runCLI(t, []string{"queue", "enqueue", meetingID, "--kind", "text"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected enqueue without transcript to fail")
	}

	if _, _, err := runCLI(t, []string{"queue", "enqueue", "missing-meeting"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected enqueue for unknown meeting to fail")
	}

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "bogus"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatalf("expected invalid status to fail, got %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, out, "Integrity")
	requireContains(t, out, "yes")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Removed 0 finished job(s)")

	if _, _, err := runCLI(t, []string{"queue", "show", "nope"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected show of unknown job to fail")
	}
}

func TestQueueEnqueueAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	transcript := filepath.Join(t.TempDir(), "t.txt")
	if err := os.WriteFile(transcript, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	out, _, err := runCLI(t, []string{"meeting", "add", "Standup", "--transcript", transcript}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("meeting add: %v", err)
	}
	meetingID := lastField(t, out, "Recorded meeting")

	out, _, err = runCLI(t, []string{"queue", "enqueue", meetingID, "-k", "text"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue enqueue: %v", err)
	}
	jobID := lastField(t, out, "Queued job")

	waitFor(t, 3*time.Second, func() bool {
		job, err := env.store.GetByID(context.Background(), jobID)
		return err == nil && job != nil && job.Status == queue.StatusCompleted
	})

	out, _, err = runCLI(t, []string{"queue", "show", jobID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, "completed")
	requireContains(t, out, "100%")

	out, _, err = runCLI(t, []string{"queue", "list", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}
	var jobs []api.Job
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("decode jobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != jobID || jobs[0].Kind != string(queue.KindTextReanalysis) {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Removed 1 finished job(s)")
}

func TestDaemonStatusAndNotify(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"daemon", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("daemon status: %v", err)
	}
	requireContains(t, out, "running")
	requireContains(t, out, env.cfg.JobsDBPath())

	out, _, err = runCLI(t, []string{"notify", "test"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")

	out, _, err = runCLI(t, []string{"person", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("person list: %v", err)
	}
	requireContains(t, out, "No people recorded")
}

func TestCommandsReportMissingDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(t.TempDir(), "absent.sock")

	_, _, err := runCLI(t, []string{"queue", "list"}, missing, env.configPath)
	if err == nil {
		t.Fatal("expected error without daemon")
	}
	requireContains(t, err.Error(), "minutes daemon start")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, env.socketPath, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, env.socketPath, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, env.socketPath, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestPreflightOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preflight", "--offline"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "API key configured")
}

func TestParseParticipant(t *testing.T) {
	got := parseParticipant(" Ana Lima : PM ")
	if got.Name != "Ana Lima" || got.Role != "PM" {
		t.Fatalf("unexpected participant: %+v", got)
	}
	if got := parseParticipant("Bruno"); got.Name != "Bruno" || got.Role != "" {
		t.Fatalf("unexpected participant: %+v", got)
	}
}

func TestDaemonLogsPrintsTail(t *testing.T) {
	env := setupCLITestEnv(t)
	content := "first\nsecond\nthird\n"
	if err := os.WriteFile(env.cfg.DaemonLogPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"daemon", "logs", "-n", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("daemon logs: %v", err)
	}
	if out != "second\nthird\n" {
		t.Fatalf("unexpected log output %q", out)
	}
}
