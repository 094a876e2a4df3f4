package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"minutes/internal/config"
)

const userAgent = "minutes/0.1.0"

// Event identifies a notification type.
type Event string

const (
	EventJobCompleted Event = "job_completed"
	EventJobErrored   Event = "job_errored"
	EventTest         Event = "test"
)

// Payload carries event fields. Known keys: "title", "jobID", "kind",
// "error", "duration".
type Payload map[string]any

// Service publishes notification events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		enabled: map[Event]bool{
			EventJobCompleted: cfg.Notifications.JobCompleted,
			EventJobErrored:   cfg.Notifications.JobErrored,
			EventTest:         true,
		},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, data Payload) error {
	if !n.enabled[event] {
		return nil
	}
	msg, ok := format(event, data)
	if !ok {
		return fmt.Errorf("unsupported notification event %q", event)
	}
	return n.send(ctx, msg)
}

func format(event Event, data Payload) (payload, bool) {
	title := strings.TrimSpace(stringValue(data, "title"))
	if title == "" {
		title = "Untitled meeting"
	}
	switch event {
	case EventJobCompleted:
		message := fmt.Sprintf("Minutes ready: %s", title)
		if d, ok := data["duration"].(time.Duration); ok && d > 0 {
			message += fmt.Sprintf(" (%s)", d.Round(time.Second))
		}
		return payload{
			title:   "Minutes - Analysis Complete",
			message: message,
			tags:    []string{"minutes", "completed"},
		}, true
	case EventJobErrored:
		message := fmt.Sprintf("Analysis failed: %s", title)
		if reason := strings.TrimSpace(stringValue(data, "error")); reason != "" {
			message += "\n" + reason
		}
		return payload{
			title:    "Minutes - Analysis Failed",
			message:  message,
			tags:     []string{"minutes", "error"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:   "Minutes - Test",
			message: "Notifications are working",
			tags:    []string{"minutes", "test"},
		}, true
	default:
		return payload{}, false
	}
}

func stringValue(data Payload, key string) string {
	switch v := data[key].(type) {
	case string:
		return v
	case error:
		if v != nil {
			return v.Error()
		}
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
