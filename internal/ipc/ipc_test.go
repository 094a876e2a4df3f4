package ipc_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"minutes/internal/analysis"
	"minutes/internal/daemon"
	"minutes/internal/guard"
	"minutes/internal/ipc"
	"minutes/internal/logging"
	"minutes/internal/testsupport"
	"minutes/internal/workflow"
)

type taskAnalyzer struct{}

func (taskAnalyzer) Analyze(_ context.Context, _ analysis.Request, progress analysis.ProgressFunc) (*analysis.Result, error) {
	progress(40, "thinking")
	return &analysis.Result{
		Summary:   "Budget approved",
		Decisions: []string{"Hire two engineers"},
		Tasks: []analysis.ProposedTask{
			{Title: "Open requisitions", Assignee: "ana lima"},
			{Title: "Update forecast"},
		},
	}, nil
}

func startServer(t *testing.T) (*ipc.Client, chan struct{}) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	records := testsupport.MustOpenRecords(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, taskAnalyzer{}, records, guard.Noop{}, logger,
		workflow.WithRearmDelay(10*time.Millisecond))

	shutdown := make(chan struct{})
	d, err := daemon.New(cfg, store, records, mgr, logger, daemon.WithShutdown(func() { close(shutdown) }))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon start: %v", err)
	}

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, shutdown
}

func TestIPCMeetingRoundTrip(t *testing.T) {
	client, _ := startServer(t)

	if _, err := client.AddPerson("Ana Lima", "Hiring manager"); err != nil {
		t.Fatalf("AddPerson: %v", err)
	}
	added, err := client.AddMeeting(ipc.AddMeetingRequest{
		Title:      "Budget review",
		HeldAt:     "2026-02-10",
		Transcript: "Ana: we can hire two engineers",
		Analyze:    true,
	})
	if err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}
	if added.JobID == "" || added.Meeting.ID == "" {
		t.Fatalf("expected meeting and job ids, got %+v", added)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := client.ShowJob(added.JobID)
		if err != nil {
			t.Fatalf("ShowJob: %v", err)
		}
		if resp.Job.Status == "completed" {
			if resp.Job.Progress != 100 {
				t.Fatalf("expected progress 100, got %d", resp.Job.Progress)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete: %+v", resp.Job)
		}
		time.Sleep(10 * time.Millisecond)
	}

	shown, err := client.ShowMeeting(added.Meeting.ID)
	if err != nil {
		t.Fatalf("ShowMeeting: %v", err)
	}
	meeting := shown.Meeting
	if !meeting.Processed || meeting.Summary != "Budget approved" {
		t.Fatalf("unexpected meeting %+v", meeting)
	}
	if len(meeting.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(meeting.Tasks))
	}
	assigned := 0
	for _, task := range meeting.Tasks {
		if task.AssigneeName == "Ana Lima" {
			assigned++
		}
	}
	if assigned != 1 {
		t.Fatalf("expected one assigned task, got %+v", meeting.Tasks)
	}
	if len(meeting.Jobs) != 1 {
		t.Fatalf("expected one job on meeting, got %d", len(meeting.Jobs))
	}
	if !strings.HasPrefix(meeting.HeldAt, "2026-02-") {
		t.Fatalf("unexpected heldAt %q", meeting.HeldAt)
	}

	list, err := client.ListJobs([]string{"completed"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(list.Jobs) != 1 {
		t.Fatalf("expected one completed job, got %d", len(list.Jobs))
	}

	cleared, err := client.ClearFinished()
	if err != nil {
		t.Fatalf("ClearFinished: %v", err)
	}
	if cleared.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", cleared.Removed)
	}
}

func TestIPCErrorsCrossTheWire(t *testing.T) {
	client, _ := startServer(t)

	if _, err := client.Enqueue("m1", "video"); err == nil || !strings.Contains(err.Error(), "unknown job kind") {
		t.Fatalf("expected kind error, got %v", err)
	}
	if _, err := client.Enqueue("missing", "audio"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := client.Cancel("nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := client.ListJobs([]string{"stuck"}); err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := client.AddMeeting(ipc.AddMeetingRequest{Title: "x", HeldAt: "yesterday"}); err == nil {
		t.Fatal("expected heldAt parse error")
	}
}

func TestIPCStatusAndStop(t *testing.T) {
	client, shutdown := startServer(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID == 0 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Workflow.QueueStats == nil {
		t.Fatal("expected queue stats map")
	}

	health, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth: %v", err)
	}
	if !health.DatabaseExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health %+v", health)
	}

	notify, err := client.TestNotify()
	if err != nil {
		t.Fatalf("TestNotify: %v", err)
	}
	if notify.Sent {
		t.Fatal("expected no notification without a topic")
	}

	resp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !resp.Stopped {
		t.Fatal("expected stop acknowledgement")
	}
	select {
	case <-shutdown:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown callback was not invoked")
	}
}
