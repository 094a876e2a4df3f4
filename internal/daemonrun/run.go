package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"minutes/internal/analysis"
	"minutes/internal/config"
	"minutes/internal/daemon"
	"minutes/internal/guard"
	"minutes/internal/ipc"
	"minutes/internal/logging"
	"minutes/internal/meetings"
	"minutes/internal/notifications"
	"minutes/internal/preflight"
	"minutes/internal/queue"
	"minutes/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the minutes daemon and blocks until a signal or a stop request.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		override := *cfg
		override.Logging.Level = level
		cfg = &override
	}
	logger, err := logging.NewFromConfig(cfg, opts.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logPreflight(logger, cfg)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	records, err := meetings.Open(cfg)
	if err != nil {
		logger.Error("open meeting records", logging.Error(err))
		return err
	}
	defer records.Close()

	bg, err := guard.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	notifier := notifications.NewService(cfg)
	analyzer := analysis.NewLLMAnalyzer(cfg, logger)
	manager := workflow.NewManager(cfg, store, analyzer, records, bg, logger, workflow.WithNotifier(notifier))

	d, err := daemon.New(cfg, store, records, manager, logger,
		daemon.WithNotifier(notifier),
		daemon.WithShutdown(cancel),
	)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		// Without the lock another daemon owns the queue; exit instead of serving a second socket.
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other minutes daemon or remove a stale lock file"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("minutes daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func logPreflight(logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunLocal(cfg) {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String(logging.FieldEventType, "preflight_passed"),
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run minutes preflight for details"),
		)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
