package queue

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusErrored    Status = "errored"
)

// Kind selects the analysis entry point for a job.
type Kind string

const (
	KindAudioAnalysis  Kind = "audio_analysis"
	KindTextReanalysis Kind = "text_reanalysis"
)

// Messages written by the store on lifecycle transitions.
const (
	MessageQueued    = "queued"
	MessagePreparing = "preparing"
	MessageRequeued  = "re-queued after interruption"
	MessageCompleted = "completed"
	MessageFailed    = "failed"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusErrored}

// AllStatuses returns every job status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsActive reports whether the job can still be claimed or is running.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusProcessing
}

// IsTerminal reports whether the job reached Completed or Errored.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusErrored
}

// ParseKind accepts the canonical names plus the short "audio" and "text" forms.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "audio", string(KindAudioAnalysis):
		return KindAudioAnalysis, nil
	case "text", "transcript", string(KindTextReanalysis):
		return KindTextReanalysis, nil
	default:
		return "", fmt.Errorf("unknown job kind %q (want audio or text)", value)
	}
}

// Job is one unit of queued analysis work tied to a meeting.
type Job struct {
	ID          string
	SubjectID   string
	Kind        Kind
	Status      Status
	Progress    int
	Message     string
	Error       string
	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// Duration reports how long the job ran, or has been running.
func (j *Job) Duration(now time.Time) time.Duration {
	if j == nil || j.StartedAt == nil {
		return 0
	}
	end := now
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	if end.Before(*j.StartedAt) {
		return 0
	}
	return end.Sub(*j.StartedAt)
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Errored    int
}

// DatabaseHealth captures diagnostic information about the job database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TableExists      bool
	MissingColumns   []string
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}
