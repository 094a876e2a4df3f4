package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"minutes/internal/analysis"
	"minutes/internal/config"
	"minutes/internal/guard"
	"minutes/internal/logging"
	"minutes/internal/meetings"
	"minutes/internal/notifications"
	"minutes/internal/queue"
	"minutes/internal/storage"
	"minutes/internal/testsupport"
	"minutes/internal/workflow"
)

type analyzeFunc func(ctx context.Context, req analysis.Request, progress analysis.ProgressFunc) (*analysis.Result, error)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fn    analyzeFunc
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req analysis.Request, progress analysis.ProgressFunc) (*analysis.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req.MeetingID)
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return &analysis.Result{Summary: "ok"}, nil
	}
	return fn(ctx, req, progress)
}

func (s *stubAnalyzer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

type stubNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (s *stubNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubNotifier) Events() []notifications.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notifications.Event, len(s.events))
	copy(out, s.events)
	return out
}

// failingMutator wraps the real records store and fails the selected operations.
type failingMutator struct {
	*meetings.Store
	applyErr     error
	processedSet []bool
	mu           sync.Mutex
}

func (f *failingMutator) ApplyResult(ctx context.Context, jobID, meetingID string, result *analysis.Result) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	return f.Store.ApplyResult(ctx, jobID, meetingID, result)
}

func (f *failingMutator) SetProcessed(ctx context.Context, meetingID string, processed bool) error {
	f.mu.Lock()
	f.processedSet = append(f.processedSet, processed)
	f.mu.Unlock()
	return f.Store.SetProcessed(ctx, meetingID, processed)
}

type harness struct {
	cfg      *config.Config
	store    *queue.Store
	records  *meetings.Store
	analyzer *stubAnalyzer
	notifier *stubNotifier
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	return &harness{
		cfg:      cfg,
		store:    testsupport.MustOpenStore(t, cfg),
		records:  testsupport.MustOpenRecords(t, cfg),
		analyzer: &stubAnalyzer{},
		notifier: &stubNotifier{},
	}
}

func (h *harness) manager(mutator workflow.Mutator, g guard.Guard, opts ...workflow.ManagerOption) *workflow.Manager {
	if mutator == nil {
		mutator = h.records
	}
	opts = append([]workflow.ManagerOption{
		workflow.WithNotifier(h.notifier),
		workflow.WithRearmDelay(10 * time.Millisecond),
		workflow.WithErrorRetryInterval(10 * time.Millisecond),
	}, opts...)
	return workflow.NewManager(h.cfg, h.store, h.analyzer, mutator, g, logging.NewNop(), opts...)
}

func (h *harness) meeting(t *testing.T, id string) *meetings.Meeting {
	t.Helper()
	return testsupport.NewMeeting(t, h.records, meetings.Meeting{
		ID:        id,
		Title:     "Meeting " + id,
		AudioPath: "/recordings/" + id + ".wav",
	})
}

func (h *harness) job(t *testing.T, id string) *queue.Job {
	t.Helper()
	job, err := h.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s): %v", id, err)
	}
	return job
}

// rejectTransition installs a trigger on the job database that aborts every
// update moving a job into status. The returned func drops it again.
func (h *harness) rejectTransition(t *testing.T, status queue.Status) func() {
	t.Helper()
	db, err := storage.OpenSQLite(h.store.Path())
	if err != nil {
		t.Fatalf("open job database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	name := "reject_" + string(status)
	ddl := fmt.Sprintf(`CREATE TRIGGER %s BEFORE UPDATE OF status ON jobs
        WHEN NEW.status = '%s'
        BEGIN SELECT RAISE(ABORT, 'disk write rejected'); END`, name, status)
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	return func() {
		t.Helper()
		if _, err := db.Exec("DROP TRIGGER IF EXISTS " + name); err != nil {
			t.Fatalf("drop trigger: %v", err)
		}
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

var errRemote = errors.New("remote service unavailable")
