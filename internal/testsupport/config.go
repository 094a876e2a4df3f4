package testsupport

import (
	"path/filepath"
	"testing"

	"minutes/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.LLM.APIKey = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "m.sock")
	cfgVal.Workflow.RearmDelaySeconds = 1
	cfgVal.Workflow.ErrorRetryInterval = 1
	cfgVal.Workflow.BackgroundGuard = config.GuardNone

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLLMKey sets the analysis API key on the test config.
func WithLLMKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = key
	}
}

// WithLLMBaseURL points the analysis client at a test server.
func WithLLMBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.BaseURL = url
	}
}

// WithGraceGuard enables the grace background guard with the given period.
func WithGraceGuard(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.BackgroundGuard = config.GuardGrace
		b.cfg.Workflow.BackgroundGraceSeconds = seconds
	}
}

// WithDedupEnqueue enables returning the existing active job on enqueue.
func WithDedupEnqueue() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.DedupEnqueue = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
