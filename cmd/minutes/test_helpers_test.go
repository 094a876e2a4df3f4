package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"minutes/internal/analysis"
	"minutes/internal/config"
	"minutes/internal/daemon"
	"minutes/internal/guard"
	"minutes/internal/ipc"
	"minutes/internal/logging"
	"minutes/internal/meetings"
	"minutes/internal/queue"
	"minutes/internal/testsupport"
	"minutes/internal/workflow"
)

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, req analysis.Request, progress analysis.ProgressFunc) (*analysis.Result, error) {
	progress(30, "transcribing")
	progress(70, "summarizing")
	return &analysis.Result{
		Summary:   "Reviewed " + req.Title,
		Decisions: []string{"Ship on Friday"},
		Tasks:     []analysis.ProposedTask{{Title: "Send recap", Assignee: "ana lima"}},
	}, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	records    *meetings.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("MINUTES_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	records := testsupport.MustOpenRecords(t, cfg)

	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, stubAnalyzer{}, records, guard.Noop{}, logger,
		workflow.WithRearmDelay(10*time.Millisecond),
		workflow.WithErrorRetryInterval(10*time.Millisecond),
	)
	d, err := daemon.New(cfg, store, records, mgr, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		store:      store,
		records:    records,
		daemon:     d,
		server:     srv,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\nsocket_path = %q\n\n[llm]\napi_key = %q\n\n[workflow]\nbackground_guard = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.SocketPath,
		cfg.LLM.APIKey,
		cfg.Workflow.BackgroundGuard,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// lastField returns the final whitespace-separated token of the first line
// containing prefix.
func lastField(t *testing.T, output, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, prefix) {
			fields := strings.Fields(line)
			return fields[len(fields)-1]
		}
	}
	t.Fatalf("no line with prefix %q in %q", prefix, output)
	return ""
}
