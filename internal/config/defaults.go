package config

const (
	defaultConfigPath             = "~/.config/minutes/config.toml"
	defaultDataDir                = "~/.local/share/minutes"
	defaultLogDir                 = "~/.local/share/minutes/logs"
	defaultSocketName             = "minutes.sock"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultLLMBaseURL             = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel               = "google/gemini-2.5-flash"
	defaultLLMReferer             = "https://github.com/minutes-app/minutes"
	defaultLLMTitle               = "Minutes Meeting Analysis"
	defaultLLMTimeoutSeconds      = 300
	defaultRearmDelaySeconds      = 2
	defaultErrorRetryInterval     = 10
	defaultBackgroundGuard        = GuardGrace
	defaultBackgroundGraceSeconds = 30
	defaultNotifyRequestTimeout   = 10
)

// Background guard variants accepted by workflow.background_guard.
const (
	GuardNone  = "none"
	GuardGrace = "grace"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Workflow: Workflow{
			RearmDelaySeconds:      defaultRearmDelaySeconds,
			ErrorRetryInterval:     defaultErrorRetryInterval,
			BackgroundGuard:        defaultBackgroundGuard,
			BackgroundGraceSeconds: defaultBackgroundGraceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			JobCompleted:   true,
			JobErrored:     true,
		},
	}
}
