package preflight

import (
	"context"

	"minutes/internal/config"
)

const llmCheckName = "Analysis LLM"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := directoryChecks(cfg)
	return append(results, CheckLLM(ctx, llmCheckName, cfg.LLM))
}

// RunLocal executes the checks that need no network access. The LLM check
// only verifies that a key is configured.
func RunLocal(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := directoryChecks(cfg)
	if cfg.HasLLMCredential() {
		return append(results, Result{Name: llmCheckName, Passed: true, Detail: "API key configured"})
	}
	return append(results, Result{Name: llmCheckName, Detail: "API key missing"})
}

func directoryChecks(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
