package config

import (
	"errors"
	"fmt"
)

const (
	minRearmDelaySeconds = 1
	maxRearmDelaySeconds = 5
)

// Validate ensures the configuration is usable.
//
// A missing LLM credential is not a validation failure: the daemon still runs
// and reports the gap when analysis is requested.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RearmDelaySeconds < minRearmDelaySeconds || c.Workflow.RearmDelaySeconds > maxRearmDelaySeconds {
		return fmt.Errorf("workflow.rearm_delay_seconds must be between %d and %d", minRearmDelaySeconds, maxRearmDelaySeconds)
	}
	if err := ensurePositiveMap(map[string]int{
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"llm.timeout_seconds":           c.LLM.TimeoutSeconds,
	}); err != nil {
		return err
	}
	switch c.Workflow.BackgroundGuard {
	case GuardNone:
	case GuardGrace:
		if c.Workflow.BackgroundGraceSeconds <= 0 {
			return errors.New("workflow.background_grace_seconds must be positive when workflow.background_guard is \"grace\"")
		}
	default:
		return fmt.Errorf("workflow.background_guard must be %q or %q, got %q", GuardNone, GuardGrace, c.Workflow.BackgroundGuard)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
