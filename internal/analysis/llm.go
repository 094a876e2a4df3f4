package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"minutes/internal/config"
	"minutes/internal/logging"
	"minutes/internal/queue"
	"minutes/internal/services"
	"minutes/internal/services/llm"
)

// Progress checkpoints reported by LLMAnalyzer.
const (
	ProgressReadingAudio = 10
	ProgressTranscribing = 30
	ProgressParsing      = 80
)

// Audio container formats accepted by the input_audio content part.
var audioFormats = map[string]string{
	".wav":  "wav",
	".mp3":  "mp3",
	".m4a":  "m4a",
	".aac":  "aac",
	".ogg":  "ogg",
	".oga":  "ogg",
	".flac": "flac",
	".webm": "webm",
	".aiff": "aiff",
}

type completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
	HasAPIKey() bool
}

// LLMAnalyzer analyzes meetings with a multimodal chat completion model.
type LLMAnalyzer struct {
	client   completer
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// Option customizes the analyzer.
type Option func(*LLMAnalyzer)

// WithClient substitutes the completion client.
func WithClient(client completer) Option {
	return func(a *LLMAnalyzer) {
		if client != nil {
			a.client = client
		}
	}
}

// NewLLMAnalyzer builds an analyzer from the [llm] config section.
func NewLLMAnalyzer(cfg *config.Config, logger *slog.Logger, opts ...Option) *LLMAnalyzer {
	var llmCfg llm.Config
	if cfg != nil {
		llmCfg = llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}
	}
	analyzer := &LLMAnalyzer{
		client:   llm.NewClient(llmCfg),
		logger:   logging.NewComponentLogger(logger, "analysis"),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(analyzer)
	}
	return analyzer
}

// Analyze runs one meeting through the model. Every failure carries
// services.ErrAdapter; a missing credential also carries ErrConfiguration.
func (a *LLMAnalyzer) Analyze(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if a.client == nil || !a.client.HasAPIKey() {
		return nil, fmt.Errorf("%w: %w", services.ErrAdapter,
			services.Wrap(services.ErrConfiguration, "analysis", "analyze", "no LLM credential configured", llm.ErrAPIKeyRequired))
	}
	logger := logging.WithContext(ctx, a.logger)

	completion := llm.Request{System: SystemPrompt}
	switch req.Kind {
	case queue.KindTextReanalysis:
		if strings.TrimSpace(req.Transcript) == "" {
			return nil, adapterError("prepare", "meeting has no transcript to reanalyze", nil)
		}
		completion.User = buildUserPrompt(req)
		report(progress, ProgressTranscribing, "analyzing transcript")
	default:
		path := strings.TrimSpace(req.AudioPath)
		if path == "" {
			return nil, adapterError("prepare", "meeting has no audio recording", nil)
		}
		report(progress, ProgressReadingAudio, "reading audio")
		data, err := a.readFile(path)
		if err != nil {
			return nil, adapterError("read audio", path, err)
		}
		if len(data) == 0 {
			return nil, adapterError("read audio", fmt.Sprintf("%s is empty", path), nil)
		}
		audioReq := req
		audioReq.Transcript = ""
		completion.User = buildUserPrompt(audioReq)
		completion.Audio = &llm.Audio{Data: data, Format: audioFormat(path)}
		logger.Debug("audio loaded",
			logging.String("audio_path", path),
			logging.Int("audio_bytes", len(data)),
			logging.String("audio_format", completion.Audio.Format),
		)
		report(progress, ProgressTranscribing, "transcribing")
	}

	content, err := a.client.Complete(ctx, completion)
	if err != nil {
		if errors.Is(err, llm.ErrAPIKeyRequired) {
			return nil, fmt.Errorf("%w: %w", services.ErrAdapter,
				services.Wrap(services.ErrConfiguration, "analysis", "analyze", "no LLM credential configured", err))
		}
		return nil, adapterError("complete", "", err)
	}

	report(progress, ProgressParsing, "parsing")
	result, err := parseResult(content)
	if err != nil {
		return nil, adapterError("parse response", "", err)
	}
	logger.Debug("analysis parsed",
		logging.Int("segments", len(result.Segments)),
		logging.Int("decisions", len(result.Decisions)),
		logging.Int("tasks", len(result.Tasks)),
	)
	return result, nil
}

func parseResult(content string) (*Result, error) {
	var result Result
	if err := llm.DecodeLLMJSON(content, &result); err != nil {
		return nil, err
	}
	return normalizeResult(&result)
}

// normalizeResult trims fields, drops empty entries, and rejects a result
// that carries no summary and no transcript.
func normalizeResult(result *Result) (*Result, error) {
	out := &Result{Summary: strings.TrimSpace(result.Summary)}
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if seg.Start < 0 || seg.End < seg.Start {
			return nil, fmt.Errorf("segment %q has invalid timing %.2f-%.2f", text, seg.Start, seg.End)
		}
		out.Segments = append(out.Segments, Segment{
			Start:   seg.Start,
			End:     seg.End,
			Text:    text,
			Speaker: strings.TrimSpace(seg.Speaker),
		})
	}
	for _, decision := range result.Decisions {
		if decision = strings.TrimSpace(decision); decision != "" {
			out.Decisions = append(out.Decisions, decision)
		}
	}
	for _, task := range result.Tasks {
		title := strings.TrimSpace(task.Title)
		if title == "" {
			continue
		}
		out.Tasks = append(out.Tasks, ProposedTask{Title: title, Assignee: strings.TrimSpace(task.Assignee)})
	}
	if out.Summary == "" && len(out.Segments) == 0 {
		return nil, errors.New("response has neither summary nor transcript")
	}
	return out, nil
}

func audioFormat(path string) string {
	if format, ok := audioFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return "wav"
}

func adapterError(operation, message string, err error) error {
	return services.Wrap(services.ErrAdapter, "analysis", operation, message, err)
}
