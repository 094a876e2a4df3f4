package queue_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"minutes/internal/queue"
	"minutes/internal/services"
	"minutes/internal/testsupport"
)

func TestEnqueueCreatesPendingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected job ID to be assigned")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected job to be persisted")
	}
	if fetched.Status != queue.StatusPending || fetched.Progress != 0 || fetched.Message != queue.MessageQueued {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
	if fetched.SubjectID != "m1" || fetched.Kind != queue.KindAudioAnalysis {
		t.Fatalf("unexpected subject/kind: %#v", fetched)
	}
	if fetched.CreatedAt.IsZero() || fetched.StartedAt != nil || fetched.CompletedAt != nil {
		t.Fatalf("unexpected timestamps: %#v", fetched)
	}
}

func TestEnqueueRequiresSubject(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := store.Enqueue(context.Background(), "  ", queue.KindAudioAnalysis)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	job, err := store.GetByID(context.Background(), "missing")
	if err != nil || job != nil {
		t.Fatalf("expected nil, nil for missing job, got %#v, %v", job, err)
	}
}

func TestNextPendingIsFIFOWithStableTies(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	var ids []string
	for _, subject := range []string{"m1", "m2", "m3"} {
		job, err := store.Enqueue(ctx, subject, queue.KindAudioAnalysis)
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		ids = append(ids, job.ID)
	}

	for i, want := range ids {
		next, err := store.NextPending(ctx)
		if err != nil {
			t.Fatalf("NextPending failed: %v", err)
		}
		if next == nil || next.ID != want {
			t.Fatalf("position %d: expected %s, got %#v", i, want, next)
		}
		claimed, err := store.Claim(ctx, next.ID)
		if err != nil || !claimed {
			t.Fatalf("Claim failed: %v claimed=%v", err, claimed)
		}
		if err := store.Complete(ctx, next.ID); err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
	}

	next, err := store.NextPending(ctx)
	if err != nil || next != nil {
		t.Fatalf("expected empty queue, got %#v, %v", next, err)
	}
}

func TestClaimRefusesSecondProcessingJob(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, _ := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	second, _ := store.Enqueue(ctx, "m2", queue.KindAudioAnalysis)

	claimed, err := store.Claim(ctx, first.ID)
	if err != nil || !claimed {
		t.Fatalf("first claim failed: %v claimed=%v", err, claimed)
	}
	claimed, err = store.Claim(ctx, second.ID)
	if err != nil {
		t.Fatalf("second claim errored: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to be refused while another job is processing")
	}
	claimed, err = store.Claim(ctx, first.ID)
	if err != nil || claimed {
		t.Fatalf("expected re-claim of processing job to be refused, got %v %v", claimed, err)
	}

	job, _ := store.GetByID(ctx, first.ID)
	if job.Status != queue.StatusProcessing || job.Message != queue.MessagePreparing || job.StartedAt == nil {
		t.Fatalf("unexpected claimed job: %#v", job)
	}
}

func TestConcurrentClaimsYieldSingleProcessingJob(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 8; i++ {
		job, err := store.Enqueue(ctx, "m", queue.KindAudioAnalysis)
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		ids = append(ids, job.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = store.Claim(ctx, id)
		}(id)
	}
	wg.Wait()

	processing, err := store.List(ctx, queue.StatusProcessing)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(processing) != 1 {
		t.Fatalf("expected exactly one processing job, got %d", len(processing))
	}
}

func TestUpdateProgressPersistsEachWrite(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	if err := store.UpdateProgress(ctx, job.ID, 10, "early"); !errors.Is(err, queue.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for pending job, got %v", err)
	}
	if _, err := store.Claim(ctx, job.ID); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}

	updates := []struct {
		percent int
		message string
		want    int
	}{
		{30, "transcribing", 30},
		{70, "summarizing", 70},
		{40, "repeated lower", 40},
		{140, "overshoot", 100},
		{-5, "negative", 0},
	}
	for _, u := range updates {
		if err := store.UpdateProgress(ctx, job.ID, u.percent, u.message); err != nil {
			t.Fatalf("UpdateProgress(%d) failed: %v", u.percent, err)
		}
		fetched, _ := store.GetByID(ctx, job.ID)
		if fetched.Progress != u.want || fetched.Message != u.message {
			t.Fatalf("after %d: got progress=%d message=%q", u.percent, fetched.Progress, fetched.Message)
		}
	}
}

func TestCompleteAndFail(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	done, _ := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	_, _ = store.Claim(ctx, done.ID)
	_ = store.UpdateProgress(ctx, done.ID, 55, "summarizing")
	if err := store.Complete(ctx, done.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	fetched, _ := store.GetByID(ctx, done.ID)
	if fetched.Status != queue.StatusCompleted || fetched.Progress != 100 || fetched.CompletedAt == nil {
		t.Fatalf("unexpected completed job: %#v", fetched)
	}
	if err := store.Complete(ctx, done.ID); !errors.Is(err, queue.ErrJobNotFound) {
		t.Fatalf("expected completing a terminal job to report ErrJobNotFound, got %v", err)
	}

	failed, _ := store.Enqueue(ctx, "m2", queue.KindTextReanalysis)
	_, _ = store.Claim(ctx, failed.ID)
	_ = store.UpdateProgress(ctx, failed.ID, 42, "transcribing")
	if err := store.Fail(ctx, failed.ID, "model unavailable"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	fetched, _ = store.GetByID(ctx, failed.ID)
	if fetched.Status != queue.StatusErrored || fetched.Error != "model unavailable" {
		t.Fatalf("unexpected errored job: %#v", fetched)
	}
	if fetched.Progress != 42 {
		t.Fatalf("expected errored job to keep last progress, got %d", fetched.Progress)
	}
}

func TestDeleteActiveLeavesTerminalJobs(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	pending, _ := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	if err := store.DeleteActive(ctx, pending.ID); err != nil {
		t.Fatalf("DeleteActive failed: %v", err)
	}
	if job, _ := store.GetByID(ctx, pending.ID); job != nil {
		t.Fatalf("expected job to be deleted, got %#v", job)
	}

	done, _ := store.Enqueue(ctx, "m2", queue.KindAudioAnalysis)
	_, _ = store.Claim(ctx, done.ID)
	_ = store.Complete(ctx, done.ID)
	if err := store.DeleteActive(ctx, done.ID); !errors.Is(err, queue.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for completed job, got %v", err)
	}
	if job, _ := store.GetByID(ctx, done.ID); job == nil {
		t.Fatal("expected completed job to be retained")
	}
}

func TestResetProcessingRequeuesInterruptedJobs(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	stuck, _ := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	waiting, _ := store.Enqueue(ctx, "m2", queue.KindAudioAnalysis)
	_, _ = store.Claim(ctx, stuck.ID)
	_ = store.UpdateProgress(ctx, stuck.ID, 65, "summarizing")

	reset, err := store.ResetProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetProcessing failed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 job reset, got %d", reset)
	}

	fetched, _ := store.GetByID(ctx, stuck.ID)
	if fetched.Status != queue.StatusPending || fetched.Progress != 0 || fetched.Message != queue.MessageRequeued {
		t.Fatalf("unexpected reset job: %#v", fetched)
	}
	if fetched.StartedAt != nil {
		t.Fatalf("expected started_at to be cleared, got %v", fetched.StartedAt)
	}

	next, _ := store.NextPending(ctx)
	if next == nil || next.ID != stuck.ID {
		t.Fatalf("expected recovered job to keep its FIFO position ahead of %s, got %#v", waiting.ID, next)
	}
}

func TestListAndClearFinished(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	a, _ := store.Enqueue(ctx, "m1", queue.KindAudioAnalysis)
	b, _ := store.Enqueue(ctx, "m1", queue.KindTextReanalysis)
	c, _ := store.Enqueue(ctx, "m2", queue.KindAudioAnalysis)
	_, _ = store.Claim(ctx, a.ID)
	_ = store.Complete(ctx, a.ID)
	_, _ = store.Claim(ctx, b.ID)
	_ = store.Fail(ctx, b.ID, "boom")

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != c.ID {
		t.Fatalf("unexpected active jobs: %#v", active)
	}

	history, err := store.ListBySubject(ctx, "m1")
	if err != nil {
		t.Fatalf("ListBySubject failed: %v", err)
	}
	if len(history) != 2 || history[0].ID != a.ID || history[1].ID != b.ID {
		t.Fatalf("unexpected subject history: %#v", history)
	}

	activeForSubject, err := store.ActiveForSubject(ctx, "m2")
	if err != nil || activeForSubject == nil || activeForSubject.ID != c.ID {
		t.Fatalf("unexpected active job for subject: %#v %v", activeForSubject, err)
	}
	if none, _ := store.ActiveForSubject(ctx, "m1"); none != nil {
		t.Fatalf("expected no active job for m1, got %#v", none)
	}

	cleared, err := store.ClearFinished(ctx)
	if err != nil {
		t.Fatalf("ClearFinished failed: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared, got %d", cleared)
	}
	all, _ := store.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected only the pending job to remain, got %d", len(all))
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 1 || health.Pending != 1 {
		t.Fatalf("unexpected health summary: %+v", health)
	}
	hasPending, err := store.HasPending(ctx)
	if err != nil || !hasPending {
		t.Fatalf("expected pending work, got %v %v", hasPending, err)
	}
}

func TestCheckHealthReportsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("unexpected missing columns: %v", health.MissingColumns)
	}
	if health.DBPath != filepath.Join(cfg.Paths.DataDir, "jobs.db") {
		t.Fatalf("unexpected db path %q", health.DBPath)
	}
}

func TestReopenKeepsJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	job, err := store.Enqueue(context.Background(), "m1", queue.KindAudioAnalysis)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	fetched, err := reopened.GetByID(context.Background(), job.ID)
	if err != nil || fetched == nil {
		t.Fatalf("expected job after reopen, got %#v %v", fetched, err)
	}
}

func TestClosedStoreReturnsStoreError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.Close()

	_, err = store.Enqueue(context.Background(), "m1", queue.KindAudioAnalysis)
	if !errors.Is(err, services.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestParseKindAndStatus(t *testing.T) {
	if kind, err := queue.ParseKind("text"); err != nil || kind != queue.KindTextReanalysis {
		t.Fatalf("unexpected kind %q %v", kind, err)
	}
	if kind, err := queue.ParseKind(""); err != nil || kind != queue.KindAudioAnalysis {
		t.Fatalf("expected default audio kind, got %q %v", kind, err)
	}
	if _, err := queue.ParseKind("video"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if status, ok := queue.ParseStatus(" Errored "); !ok || status != queue.StatusErrored {
		t.Fatalf("unexpected status %q %v", status, ok)
	}
	if !queue.StatusProcessing.IsActive() || queue.StatusCompleted.IsActive() || !queue.StatusErrored.IsTerminal() {
		t.Fatal("unexpected status predicates")
	}
}
